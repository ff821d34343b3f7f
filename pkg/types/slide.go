// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SlideRequest identifies one download attempt. It lives for a single loop
// iteration.
type SlideRequest struct {
	// Index is the slide number substituted into the URL.
	Index int `json:"index" yaml:"index"`

	// URL is the full SVG URL for Index.
	URL string `json:"url" yaml:"url"`
}

// DownloadedImage is the local path of one converted raster slide. A slice of
// these is ordered by ascending slide index and becomes the deck's page order.
type DownloadedImage = string
