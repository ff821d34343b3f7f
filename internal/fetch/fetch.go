// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads numbered SVG slides and converts each one to a
// raster file in the working directory.
package fetch

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/slidedeck/internal/httputil"
	"github.com/pdiddy/slidedeck/internal/raster"
	"github.com/pdiddy/slidedeck/internal/workdir"
	"github.com/pdiddy/slidedeck/pkg/types"
)

// Result holds the outcome of a download run.
type Result struct {
	// Files lists converted slides in ascending index order.
	Files []types.DownloadedImage

	// Attempted counts indices requested.
	Attempted int

	// Failed counts misses of any kind.
	Failed int

	// StoppedEarly is set when the consecutive-failure limit ended the run
	// before the attempt budget was spent.
	StoppedEarly bool
}

// Downloaded returns the number of slides converted.
func (r Result) Downloaded() int {
	return len(r.Files)
}

// DownloadSlides attempts indices cfg.Start through cfg.Start+cfg.Max-1 in
// order, writing each converted slide to cfg.OutputDir.
//
// A failed index (network error, non-2xx status, undecodable SVG) is skipped
// and counts toward the consecutive-failure limit; any success resets the
// count. Reaching the limit ends the run without error. cfg.Delay separates
// consecutive attempts. An unsupported format or a cancelled context aborts
// with an error; Files then holds whatever was converted so far.
func DownloadSlides(ctx context.Context, client *http.Client, rz raster.Rasterizer, cfg types.RunConfig, w io.Writer) (Result, error) {
	var result Result

	if !cfg.Format.IsJPEG() && cfg.Format != types.FormatPNG {
		return result, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, cfg.Format)
	}
	if err := workdir.Ensure(cfg.OutputDir); err != nil {
		return result, err
	}

	maxFailures := cfg.MaxConsecutiveFailures
	if maxFailures <= 0 {
		maxFailures = types.DefaultMaxConsecutiveFailures
	}
	prefix := NormalizeBaseURL(cfg.BaseURL)

	fmt.Fprintf(w, "Starting download from: %s\n", SlideURL(prefix, cfg.Start))
	if cfg.Max <= 0 {
		fmt.Fprintf(w, "\nSuccessfully downloaded 0 slides\n")
		return result, nil
	}

	bar := progressbar.NewOptions(cfg.Max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
	)

	failures := 0
	for i := 0; i < cfg.Max; i++ {
		if i > 0 {
			if err := sleep(ctx, cfg.Delay); err != nil {
				return result, err
			}
		}

		req := types.SlideRequest{Index: cfg.Start + i}
		req.URL = SlideURL(prefix, req.Index)
		bar.Describe(fmt.Sprintf("Downloading slide %d", req.Index))

		path, err := fetchSlide(ctx, client, rz, cfg, req)
		result.Attempted++
		bar.Add(1)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}

			failures++
			result.Failed++
			if httputil.IsNotFound(err) {
				bar.Describe(fmt.Sprintf("Slide %d not found", req.Index))
			} else {
				fmt.Fprintf(w, "\nError processing %s: %v\n", req.URL, err)
			}
			slog.Debug("slide miss", "index", req.Index, "url", req.URL, "consecutive", failures, "err", err)

			if failures >= maxFailures {
				if i < cfg.Max-1 {
					result.StoppedEarly = true
					fmt.Fprintf(w, "\nStopping after %d consecutive failures\n", maxFailures)
				}
				break
			}
			continue
		}

		failures = 0
		result.Files = append(result.Files, path)
		slog.Debug("slide converted", "index", req.Index, "path", path)
	}

	fmt.Fprintf(w, "\nSuccessfully downloaded %d slides\n", result.Downloaded())
	return result, nil
}

// fetchSlide downloads one SVG, rasterizes it and writes the encoded file.
func fetchSlide(ctx context.Context, client *http.Client, rz raster.Rasterizer, cfg types.RunConfig, req types.SlideRequest) (string, error) {
	body, err := httputil.Get(ctx, client, req.URL, cfg.UserAgent)
	if err != nil {
		return "", err
	}

	img, err := rasterize(rz, body)
	if err != nil {
		return "", fmt.Errorf("converting slide %d: %w", req.Index, err)
	}

	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = types.DefaultJPEGQuality
	}
	path := filepath.Join(cfg.OutputDir, fmt.Sprintf("slide%d.%s", req.Index, cfg.Format.Extension()))
	if err := raster.WriteFile(path, img, cfg.Format, quality); err != nil {
		return "", err
	}
	return path, nil
}

// rasterize turns a renderer panic on malformed input into an ordinary miss.
func rasterize(rz raster.Rasterizer, svg []byte) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s rasterizer panicked: %v", rz.Name(), r)
		}
	}()
	return rz.Rasterize(svg)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
