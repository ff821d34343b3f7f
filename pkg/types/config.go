// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ImageFormat selects the raster format written for each slide.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatJPG  ImageFormat = "jpg"
	FormatPNG  ImageFormat = "png"
)

// Extension returns the file extension (without the dot) used for slide files.
func (f ImageFormat) Extension() string {
	return string(f)
}

// IsJPEG reports whether f selects JPEG output under either spelling.
func (f ImageFormat) IsJPEG() bool {
	return f == FormatJPEG || f == FormatJPG
}

// RasterBackend identifies the SVG rasterizer.
type RasterBackend string

const (
	RasterNative RasterBackend = "native"
	RasterRsvg   RasterBackend = "rsvg-convert"
)

// CLIFormats lists the --format values accepted on the command line.
var CLIFormats = []ImageFormat{FormatJPEG, FormatPNG}

// Defaults for RunConfig fields left at their zero value.
const (
	DefaultOutputDir              = "slides"
	DefaultStart                  = 1
	DefaultMax                    = 100
	DefaultFormat                 = FormatJPEG
	DefaultPresentation           = "presentation.pptx"
	DefaultTimeout                = 10 * time.Second
	DefaultDelay                  = 500 * time.Millisecond
	DefaultMaxConsecutiveFailures = 3
	DefaultJPEGQuality            = 90
	DefaultScale                  = 1.0
	DefaultUserAgent              = "slidedeck/0.1"
)

// Configuration validation errors.
var (
	// ErrNoBaseURL is returned when the positional base URL is missing or blank.
	ErrNoBaseURL = errors.New("no base URL specified")

	// ErrUnsupportedFormat is returned for any output format other than jpeg or png.
	// It is fatal: the run aborts before or during download.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedRasterizer is returned for an unknown rasterizer backend.
	ErrUnsupportedRasterizer = errors.New("unsupported rasterizer")

	// ErrInvalidMax is returned when the attempt budget is negative.
	ErrInvalidMax = errors.New("invalid max: must be non-negative")

	// ErrInvalidQuality is returned when the JPEG quality is outside 1..100.
	ErrInvalidQuality = errors.New("invalid quality: must be between 1 and 100")

	// ErrInvalidScale is returned when the rasterization scale is not positive.
	ErrInvalidScale = errors.New("invalid scale: must be positive")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the inter-attempt delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")
)

// HTTPConfig holds the HTTP settings used by the fetch stage.
type HTTPConfig struct {
	// Timeout bounds each slide request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RunConfig holds the operator-supplied parameters for one run.
// It is built once by the CLI and not modified afterwards.
type RunConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the slide URL in any accepted shape (see fetch.NormalizeBaseURL).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// OutputDir is the working directory for intermediate raster files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Start is the first slide index attempted.
	Start int `json:"start" yaml:"start"`

	// Max is the number of indices attempted, not a count of successes.
	Max int `json:"max" yaml:"max"`

	// Format is the raster format stored in OutputDir and embedded in the deck.
	Format ImageFormat `json:"format" yaml:"format"`

	// Presentation is the output .pptx path.
	Presentation string `json:"presentation" yaml:"presentation"`

	// KeepImages retains OutputDir after the deck is written.
	KeepImages bool `json:"keep_images" yaml:"keep_images"`

	// Delay is the pause between consecutive slide attempts.
	Delay time.Duration `json:"delay" yaml:"delay"`

	// MaxConsecutiveFailures ends the download phase once reached.
	MaxConsecutiveFailures int `json:"max_consecutive_failures" yaml:"max_consecutive_failures"`

	// JPEGQuality is the encoder quality for jpeg output.
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality"`

	// Scale multiplies the SVG's intrinsic size when rasterizing.
	Scale float64 `json:"scale" yaml:"scale"`

	// Rasterizer selects the SVG backend.
	Rasterizer RasterBackend `json:"rasterizer" yaml:"rasterizer"`
}

// DefaultRunConfig returns a RunConfig populated with the documented defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		OutputDir:              DefaultOutputDir,
		Start:                  DefaultStart,
		Max:                    DefaultMax,
		Format:                 DefaultFormat,
		Presentation:           DefaultPresentation,
		Delay:                  DefaultDelay,
		MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
		JPEGQuality:            DefaultJPEGQuality,
		Scale:                  DefaultScale,
		Rasterizer:             RasterNative,
	}
}

// ParseCLIFormat accepts only the values offered by --format.
func ParseCLIFormat(s string) (ImageFormat, error) {
	f := ImageFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, allowed := range CLIFormats {
		if f == allowed {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (choose from jpeg, png)", ErrUnsupportedFormat, s)
}

// Validate checks the configuration before any network activity.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrNoBaseURL
	}
	if _, err := ParseCLIFormat(string(c.Format)); err != nil {
		return err
	}
	switch c.Rasterizer {
	case RasterNative, RasterRsvg:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedRasterizer, c.Rasterizer)
	}
	if c.Max < 0 {
		return ErrInvalidMax
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return ErrInvalidQuality
	}
	if c.Scale <= 0 {
		return ErrInvalidScale
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	return nil
}
