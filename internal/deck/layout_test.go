// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCanvas(t *testing.T) {
	assert.Equal(t, int64(9144000), DefaultCanvas.Width)
	assert.Equal(t, int64(5143500), DefaultCanvas.Height)
}

func TestFit(t *testing.T) {
	c := DefaultCanvas
	tests := []struct {
		name string
		w, h int
		want Placement
	}{
		{
			name: "exact 16:9",
			w: 1600, h: 900,
			want: Placement{X: 0, Y: 0, Width: c.Width, Height: c.Height},
		},
		{
			name: "exact 16:9 small",
			w: 16, h: 9,
			want: Placement{X: 0, Y: 0, Width: c.Width, Height: c.Height},
		},
		{
			name: "wider 2:1",
			w: 2000, h: 1000,
			want: Placement{X: 0, Y: (c.Height - 4572000) / 2, Width: c.Width, Height: 4572000},
		},
		{
			name: "taller 4:3",
			w: 1024, h: 768,
			want: Placement{X: (c.Width - 6858000) / 2, Y: 0, Width: 6858000, Height: c.Height},
		},
		{
			name: "square",
			w: 500, h: 500,
			want: Placement{X: (c.Width - c.Height) / 2, Y: 0, Width: c.Height, Height: c.Height},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fit(tt.w, tt.h, c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFitOffsets(t *testing.T) {
	wide, err := Fit(1920, 800, DefaultCanvas)
	require.NoError(t, err)
	assert.Zero(t, wide.X)
	assert.Positive(t, wide.Y)

	tall, err := Fit(600, 800, DefaultCanvas)
	require.NoError(t, err)
	assert.Zero(t, tall.Y)
	assert.Positive(t, tall.X)

	same, err := Fit(1280, 720, DefaultCanvas)
	require.NoError(t, err)
	assert.Zero(t, same.X)
	assert.Zero(t, same.Y)
}

func TestFitStaysInsideCanvas(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 7}, {1919, 1081}, {7, 3}, {10000, 1}, {1, 10000}} {
		p, err := Fit(size[0], size[1], DefaultCanvas)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.X, int64(0))
		assert.GreaterOrEqual(t, p.Y, int64(0))
		assert.LessOrEqual(t, p.X+p.Width, DefaultCanvas.Width)
		assert.LessOrEqual(t, p.Y+p.Height, DefaultCanvas.Height)
	}
}

func TestFitRejectsEmpty(t *testing.T) {
	_, err := Fit(0, 100, DefaultCanvas)
	assert.Error(t, err)
	_, err = Fit(100, -1, DefaultCanvas)
	assert.Error(t, err)
	_, err = Fit(100, 100, Canvas{})
	assert.Error(t, err)
}
