// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slidedeck/pkg/types"
)

const envPrefix = "SLIDEDECK"

// newRootCmd builds the single slidedeck command. Each call gets its own
// viper instance so flag, env and config-file state never leaks between runs.
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "slidedeck [flags] base_url",
		Short: "Download SVG slides and assemble them into a PowerPoint deck",
		Long: `slidedeck downloads a numbered sequence of SVG slides (slide1.svg,
slide2.svg, ...) from a web server, rasterizes each one to JPEG or PNG, and
assembles the images into a 16:9 .pptx presentation, one slide per image.

base_url may end in "slide", "/", a numbered "slideN.svg", or be the bare
directory URL. Downloading stops after 3 consecutive missing slides.`,
		Example: `  slidedeck https://example.com/presentation/abc/svgs/slide
  slidedeck --format png --keep-images https://example.com/presentation/abc/svgs/slide1.svg`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}
			if err := initConfig(v, cmd.ErrOrStderr()); err != nil {
				return err
			}
			setupLogger(cmd.ErrOrStderr(), v.GetBool("verbose"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(v, args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("output-dir", types.DefaultOutputDir, "directory to save the images")
	f.Int("start", types.DefaultStart, "starting slide number")
	f.Int("max", types.DefaultMax, "maximum number of slides to attempt")
	f.String("format", string(types.DefaultFormat), "output image format: jpeg or png")
	f.String("presentation", types.DefaultPresentation, "output PowerPoint file")
	f.Bool("keep-images", false, "keep the image files after creating the presentation")
	f.Duration("timeout", types.DefaultTimeout, "HTTP timeout per slide")
	f.Duration("delay", types.DefaultDelay, "delay between slide attempts")
	f.Int("quality", types.DefaultJPEGQuality, "JPEG quality (1-100)")
	f.Float64("scale", types.DefaultScale, "rasterization scale relative to the SVG's size")
	f.String("rasterizer", string(types.RasterNative), "SVG renderer: native or rsvg-convert")
	f.String("config", "", "config file (default: ./slidedeck.yaml or ~/.config/slidedeck/slidedeck.yaml)")
	f.BoolP("verbose", "v", false, "enable debug logging")

	return cmd
}

// initConfig wires the config file and environment into v. A missing config
// file is not an error unless one was named explicitly.
func initConfig(v *viper.Viper, stderr io.Writer) error {
	cfgFile := v.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("slidedeck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "slidedeck"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
		return nil
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// setupLogger installs a text slog handler on stderr as the default logger.
func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadRunConfig resolves flags, env and config file into a validated RunConfig.
func loadRunConfig(v *viper.Viper, baseURL string) (types.RunConfig, error) {
	format, err := types.ParseCLIFormat(v.GetString("format"))
	if err != nil {
		return types.RunConfig{}, err
	}

	cfg := types.DefaultRunConfig()
	cfg.BaseURL = baseURL
	cfg.OutputDir = v.GetString("output-dir")
	cfg.Start = v.GetInt("start")
	cfg.Max = v.GetInt("max")
	cfg.Format = format
	cfg.Presentation = v.GetString("presentation")
	cfg.KeepImages = v.GetBool("keep-images")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Delay = v.GetDuration("delay")
	cfg.JPEGQuality = v.GetInt("quality")
	cfg.Scale = v.GetFloat64("scale")
	cfg.Rasterizer = types.RasterBackend(v.GetString("rasterizer"))

	if err := cfg.Validate(); err != nil {
		return types.RunConfig{}, err
	}
	return cfg, nil
}
