// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pdiddy/slidedeck/internal/deck"
	"github.com/pdiddy/slidedeck/internal/fetch"
	"github.com/pdiddy/slidedeck/internal/raster"
	"github.com/pdiddy/slidedeck/internal/workdir"
	"github.com/pdiddy/slidedeck/pkg/types"
)

// removeDir deletes the working directory. Tests override this.
var removeDir = workdir.Remove

// run downloads, assembles and cleans up. Per-slide misses are absorbed by
// the fetch stage; configuration and save failures are returned.
func run(ctx context.Context, cfg types.RunConfig, w io.Writer) error {
	rz, err := raster.New(cfg.Rasterizer, cfg.Scale)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Slide Downloader and Presentation Creator")
	fmt.Fprintln(w, "=========================================")
	slog.Debug("starting run", "base_url", cfg.BaseURL, "format", cfg.Format, "rasterizer", rz.Name(), "start", cfg.Start, "max", cfg.Max)

	client := &http.Client{Timeout: cfg.Timeout}
	result, err := fetch.DownloadSlides(ctx, client, rz, cfg, w)
	if err != nil {
		return err
	}
	if result.Downloaded() == 0 {
		fmt.Fprintln(w, "No slides downloaded; no presentation created.")
		return nil
	}

	if err := deck.Build(ctx, result.Files, cfg.Presentation, w); err != nil {
		return err
	}
	sum, err := deck.Verify(cfg.Presentation, result.Downloaded())
	if err != nil {
		return fmt.Errorf("verifying presentation: %w", err)
	}

	if cfg.KeepImages {
		fmt.Fprintf(w, "Images kept in %s\n", cfg.OutputDir)
	} else {
		cleanup(cfg.OutputDir, w)
	}

	fmt.Fprintf(w, "\nSummary: %d slides in %s (%d attempted, %d missing)\n",
		len(sum.Slides), cfg.Presentation, result.Attempted, result.Failed)
	return nil
}

// cleanup removes the working directory. Failure is only a warning.
func cleanup(dir string, w io.Writer) {
	removed, err := removeDir(dir)
	if err != nil {
		slog.Warn("could not delete temporary directory", "dir", dir, "err", err)
		return
	}
	if removed {
		fmt.Fprintf(w, "Cleaned up temporary files: %s directory deleted\n", dir)
	}
}
