// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"

	"golang.org/x/image/draw"
)

const binRsvg = "rsvg-convert"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

var defaultExec executor = &osExecutor{}

// CommandRasterizer pipes SVG through librsvg's rsvg-convert and decodes the
// PNG it writes to stdout. It handles text and filters the native renderer
// does not. Results carry the original PNG bytes unless they were resampled.
type CommandRasterizer struct {
	scale float64
	exec  executor
}

// NewCommandRasterizer verifies that rsvg-convert is on PATH.
func NewCommandRasterizer(scale float64) (*CommandRasterizer, error) {
	return newCommandRasterizer(defaultExec, scale)
}

func newCommandRasterizer(exec executor, scale float64) (*CommandRasterizer, error) {
	if _, err := exec.LookPath(binRsvg); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binRsvg, err)
	}
	if scale <= 0 {
		scale = 1
	}
	return &CommandRasterizer{scale: scale, exec: exec}, nil
}

func (c *CommandRasterizer) Name() string { return binRsvg }

func (c *CommandRasterizer) Rasterize(svg []byte) (image.Image, error) {
	args := []string{"--format", "png"}
	if c.scale != 1 {
		args = append(args, "--zoom", strconv.FormatFloat(c.scale, 'f', -1, 64))
	}

	var out bytes.Buffer
	if err := c.exec.RunPiped(binRsvg, args, bytes.NewReader(svg), &out); err != nil {
		return nil, fmt.Errorf("running %s: %w", binRsvg, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced empty output", binRsvg)
	}

	data := out.Bytes()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", binRsvg, err)
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		w, h := fitDimensions(float64(b.Dx()), float64(b.Dy()))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst, nil
	}
	return &EncodedImage{Image: img, PNG: data}, nil
}
