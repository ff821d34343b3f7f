// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maxDimension bounds either side of a rendered slide in pixels.
const maxDimension = 16384

// ErrEmptyCanvas is returned when an SVG declares no usable size.
var ErrEmptyCanvas = errors.New("svg has no width or height")

// NativeRasterizer renders SVG in pure Go using oksvg and rasterx.
type NativeRasterizer struct {
	scale float64
}

// NewNativeRasterizer creates a native rasterizer. A non-positive scale is
// treated as 1.
func NewNativeRasterizer(scale float64) *NativeRasterizer {
	if scale <= 0 {
		scale = 1
	}
	return &NativeRasterizer{scale: scale}
}

func (n *NativeRasterizer) Name() string { return "native" }

// Rasterize parses svg and draws it onto a transparent RGBA canvas sized from
// the root element's width and height (or viewBox) times the scale. Sizes past
// maxDimension on either side are shrunk to fit.
func (n *NativeRasterizer) Rasterize(svg []byte) (image.Image, error) {
	doc, err := prepareSVG(svg)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	w, h := fitDimensions(doc.Width*n.scale, doc.Height*n.scale)
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyCanvas
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc.data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
