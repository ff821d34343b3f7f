// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"strconv"
	"strings"
)

const (
	slidePrefix = "slide"
	svgExt      = ".svg"
)

// NormalizeBaseURL reduces any accepted base URL shape to the "slide" prefix
// that slide numbers are appended to:
//
//	https://host/deck/slide       -> unchanged
//	https://host/deck/            -> https://host/deck/slide
//	https://host/deck/slide7.svg  -> https://host/deck/slide
//	https://host/deck             -> https://host/deck/slide
func NormalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	switch {
	case strings.HasSuffix(base, slidePrefix):
		return base
	case strings.HasSuffix(base, "/"):
		return base + slidePrefix
	case strings.HasSuffix(base, svgExt):
		if i := strings.LastIndex(base, slidePrefix); i >= 0 {
			return base[:i] + slidePrefix
		}
		// No "slide" segment: treat the file's directory as the root.
		if i := strings.LastIndex(base, "/"); i >= 0 {
			return base[:i+1] + slidePrefix
		}
		return base + "/" + slidePrefix
	default:
		return base + "/" + slidePrefix
	}
}

// SlideURL returns the SVG URL for slide n under prefix.
func SlideURL(prefix string, n int) string {
	return prefix + strconv.Itoa(n) + svgExt
}
