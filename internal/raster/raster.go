// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster turns SVG slide documents into bitmap images and encodes
// them as JPEG or PNG.
package raster

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/pdiddy/slidedeck/pkg/types"
)

// Rasterizer converts an SVG document into a bitmap. The native pure-Go
// renderer and the rsvg-convert command implement this interface.
type Rasterizer interface {
	// Name identifies the backend in log output.
	Name() string

	// Rasterize decodes svg and renders it at its intrinsic size.
	Rasterize(svg []byte) (image.Image, error)
}

// EncodedImage is a bitmap together with the PNG bytes it was decoded from.
// PNG output writes those bytes unchanged.
type EncodedImage struct {
	image.Image
	PNG []byte
}

// New returns the rasterizer for backend. Scale multiplies the SVG's
// intrinsic size.
func New(backend types.RasterBackend, scale float64) (Rasterizer, error) {
	switch backend {
	case types.RasterNative, "":
		return NewNativeRasterizer(scale), nil
	case types.RasterRsvg:
		return NewCommandRasterizer(scale)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedRasterizer, backend)
	}
}

// Encode writes img to w in the given format. JPEG output drops the alpha
// channel and is always 3-channel; PNG output is the bitmap as rendered, or
// the rasterizer's own PNG bytes for an *EncodedImage.
func Encode(w io.Writer, img image.Image, format types.ImageFormat, quality int) error {
	switch {
	case format.IsJPEG():
		return jpeg.Encode(w, Opaque(img), &jpeg.Options{Quality: quality})
	case format == types.FormatPNG:
		if enc, ok := img.(*EncodedImage); ok && len(enc.PNG) > 0 {
			_, err := w.Write(enc.PNG)
			return err
		}
		return png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, format)
	}
}

// WriteFile encodes img to path. A partially written file is removed on error.
func WriteFile(path string, img image.Image, format types.ImageFormat, quality int) error {
	if !format.IsJPEG() && format != types.FormatPNG {
		return fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	bw := bufio.NewWriter(f)
	encErr := Encode(bw, img, format, quality)
	if encErr == nil {
		encErr = bw.Flush()
	}
	closeErr := f.Close()
	if encErr != nil {
		os.Remove(path)
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), encErr)
	}
	if closeErr != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", filepath.Base(path), closeErr)
	}
	return nil
}

// Opaque returns a copy of img with the alpha channel discarded. Color values
// are un-premultiplied first, so a half-transparent red pixel becomes full red
// and fully transparent pixels become black.
func Opaque(img image.Image) *image.NRGBA {
	if enc, ok := img.(*EncodedImage); ok {
		img = enc.Image
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
