// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import "fmt"

// EMUPerInch is the number of English Metric Units in one inch.
const EMUPerInch = 914400

// Canvas is the slide size in EMU.
type Canvas struct {
	Width  int64
	Height int64
}

// DefaultCanvas is a 16:9 slide, 10 in by 5.625 in.
var DefaultCanvas = Canvas{
	Width:  10 * EMUPerInch,
	Height: 5625 * EMUPerInch / 1000,
}

// Placement positions one picture on the canvas, in EMU.
type Placement struct {
	X      int64
	Y      int64
	Width  int64
	Height int64
}

// Fit scales a width×height image to the largest size that fits the canvas
// without cropping or distortion and centers it on the axis with slack.
//
// An image wider than the canvas ratio spans the full width and is centered
// vertically; any other image spans the full height and is centered
// horizontally. Ratios are compared exactly by cross-multiplication.
func Fit(width, height int, c Canvas) (Placement, error) {
	if width <= 0 || height <= 0 {
		return Placement{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return Placement{}, fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}

	w, h := int64(width), int64(height)
	if w*c.Height > h*c.Width {
		picH := divRound(c.Width*h, w)
		return Placement{
			X:      0,
			Y:      (c.Height - picH) / 2,
			Width:  c.Width,
			Height: picH,
		}, nil
	}

	picW := divRound(c.Height*w, h)
	return Placement{
		X:      (c.Width - picW) / 2,
		Y:      0,
		Width:  picW,
		Height: c.Height,
	}, nil
}

// divRound divides non-negative a by positive b, rounding half up.
func divRound(a, b int64) int64 {
	return (a + b/2) / b
}
