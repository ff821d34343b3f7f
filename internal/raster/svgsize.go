// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// cssDPI is the pixels-per-inch used to resolve absolute SVG lengths.
const cssDPI = 96.0

// unitPixels maps SVG length units to pixels.
var unitPixels = map[string]float64{
	"":   1,
	"px": 1,
	"pt": cssDPI / 72,
	"pc": cssDPI / 6,
	"in": cssDPI,
	"cm": cssDPI / 2.54,
	"mm": cssDPI / 25.4,
}

var errNoSVGRoot = errors.New("no <svg> root element")

// viewBox is the user coordinate system declared on the root element.
type viewBox struct {
	X, Y, W, H float64
}

// svgDocument is an SVG whose root element has been normalized for oksvg.
type svgDocument struct {
	// data has the root width and height removed and a viewBox always set.
	data []byte

	// Width and Height are the rendered size in pixels before scaling.
	Width, Height float64
}

// prepareSVG resolves the intrinsic pixel size of svg and rewrites its root
// element so oksvg reads only the viewBox. oksvg stops reading root attributes
// at the first width or height it cannot parse, such as "100%" or "10in".
//
// Both width and height set: that is the size. One set with a viewBox: the
// other follows the viewBox aspect ratio. Neither usable: the viewBox size.
// A document with no resolvable size returns zero Width and Height.
func prepareSVG(svg []byte) (svgDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	dec.Strict = false

	var root xml.StartElement
	var start, end int64
	for {
		start = dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			return svgDocument{}, errNoSVGRoot
		}
		if err != nil {
			return svgDocument{}, fmt.Errorf("reading svg root: %w", err)
		}
		if el, ok := tok.(xml.StartElement); ok {
			if el.Name.Local != "svg" {
				return svgDocument{}, errNoSVGRoot
			}
			root = el
			end = dec.InputOffset()
			break
		}
	}

	var width, height, box string
	for _, a := range root.Attr {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		case "viewBox":
			box = a.Value
		}
	}

	vb, hasVB := parseViewBox(box)
	w, wOK := parseLength(width)
	h, hOK := parseLength(height)

	doc := svgDocument{}
	switch {
	case wOK && hOK:
		doc.Width, doc.Height = w, h
	case wOK && hasVB:
		doc.Width, doc.Height = w, w*vb.H/vb.W
	case hOK && hasVB:
		doc.Width, doc.Height = h*vb.W/vb.H, h
	case hasVB:
		doc.Width, doc.Height = vb.W, vb.H
	}
	if !hasVB && doc.Width > 0 && doc.Height > 0 {
		vb, hasVB = viewBox{W: doc.Width, H: doc.Height}, true
	}

	var b bytes.Buffer
	b.Grow(len(svg) + 64)
	b.Write(svg[:start])
	b.WriteByte('<')
	writeName(&b, root.Name)
	for _, a := range root.Attr {
		if a.Name.Space == "" && (a.Name.Local == "width" || a.Name.Local == "height" || a.Name.Local == "viewBox") {
			continue
		}
		b.WriteByte(' ')
		writeName(&b, a.Name)
		b.WriteString(`="`)
		xml.EscapeText(&b, []byte(a.Value))
		b.WriteByte('"')
	}
	if hasVB {
		fmt.Fprintf(&b, ` viewBox="%s %s %s %s"`, formatFloat(vb.X), formatFloat(vb.Y), formatFloat(vb.W), formatFloat(vb.H))
	}
	if bytes.HasSuffix(svg[start:end], []byte("/>")) {
		b.WriteString("/>")
	} else {
		b.WriteByte('>')
	}
	b.Write(svg[end:])
	doc.data = b.Bytes()
	return doc, nil
}

// parseLength converts an absolute SVG length to pixels. Percentages and
// font-relative units are not resolvable without a viewport.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' && r != 'e' && r != 'E'
	})
	num, unit := s, ""
	if i >= 0 {
		num, unit = s[:i], strings.ToLower(strings.TrimSpace(s[i:]))
	}
	// "1em" splits as "1e" + "m"; retry without the exponent marker.
	if strings.HasSuffix(num, "e") || strings.HasSuffix(num, "E") {
		num, unit = num[:len(num)-1], strings.ToLower(s[len(num)-1:])
	}
	factor, ok := unitPixels[unit]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v * factor, true
}

func parseViewBox(s string) (viewBox, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return viewBox{}, false
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return viewBox{}, false
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return viewBox{}, false
	}
	return viewBox{X: v[0], Y: v[1], W: v[2], H: v[3]}, true
}

// fitDimensions rounds a pixel size up and shrinks it, keeping the aspect
// ratio, so neither side exceeds maxDimension.
func fitDimensions(w, h float64) (int, int) {
	if w <= 0 || h <= 0 || math.IsNaN(w) || math.IsNaN(h) {
		return 0, 0
	}
	if w > maxDimension || h > maxDimension {
		f := math.Min(maxDimension/w, maxDimension/h)
		w, h = w*f, h*f
	}
	return min(int(math.Ceil(w)), maxDimension), min(int(math.Ceil(h)), maxDimension)
}

func writeName(b *bytes.Buffer, n xml.Name) {
	if n.Space != "" {
		b.WriteString(n.Space)
		b.WriteByte(':')
	}
	b.WriteString(n.Local)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
