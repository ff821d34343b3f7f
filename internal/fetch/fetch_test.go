// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/slidedeck/internal/raster"
	"github.com/pdiddy/slidedeck/pkg/types"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="160" height="90" viewBox="0 0 160 90">
  <rect x="0" y="0" width="160" height="90" fill="#336699"/>
</svg>`

var slidePath = regexp.MustCompile(`^/svgs/slide(\d+)\.svg$`)

// slideServer serves sampleSVG for the indices in ok and answers every other
// index with status. It records the indices requested, in order.
type slideServer struct {
	*httptest.Server
	mu        sync.Mutex
	requested []int
}

func newSlideServer(t *testing.T, ok map[int]bool, status int) *slideServer {
	t.Helper()
	s := &slideServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := slidePath.FindStringSubmatch(r.URL.Path)
		if m == nil {
			http.NotFound(w, r)
			return
		}
		n, _ := strconv.Atoi(m[1])
		s.mu.Lock()
		s.requested = append(s.requested, n)
		s.mu.Unlock()
		if !ok[n] {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		fmt.Fprint(w, sampleSVG)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *slideServer) Requested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.requested...)
}

func testConfig(t *testing.T, baseURL string) types.RunConfig {
	t.Helper()
	cfg := types.DefaultRunConfig()
	cfg.BaseURL = baseURL
	cfg.OutputDir = filepath.Join(t.TempDir(), "slides")
	cfg.Delay = 0
	cfg.UserAgent = "slidedeck-test/0.1"
	return cfg
}

func slideNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestDownloadSlidesGapThenStop(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true, 2: true, 3: true, 5: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/")
	cfg.Max = 10

	var out bytes.Buffer
	result, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"slide1.jpeg", "slide2.jpeg", "slide3.jpeg", "slide5.jpeg"}, slideNames(result.Files))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, ts.Requested())
	assert.Equal(t, 8, result.Attempted)
	assert.Equal(t, 4, result.Failed)
	assert.True(t, result.StoppedEarly)
	assert.Contains(t, out.String(), "Stopping after 3 consecutive failures")
	assert.Contains(t, out.String(), "Successfully downloaded 4 slides")

	for _, f := range result.Files {
		assert.FileExists(t, f)
		assert.Equal(t, cfg.OutputDir, filepath.Dir(f))
	}
}

func TestDownloadSlidesServerErrorsCountAsMisses(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true}, http.StatusInternalServerError)
	cfg := testConfig(t, ts.URL+"/svgs/slide")
	cfg.Max = 10

	var out bytes.Buffer
	result, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"slide1.jpeg"}, slideNames(result.Files))
	assert.Equal(t, []int{1, 2, 3, 4}, ts.Requested())
	assert.True(t, result.StoppedEarly)
	assert.Contains(t, out.String(), "HTTP 500")
}

func TestDownloadSlidesBudgetExhausted(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{3: true, 4: true, 5: true, 6: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/slide3.svg")
	cfg.Start = 3
	cfg.Max = 3
	cfg.Format = types.FormatPNG

	result, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"slide3.png", "slide4.png", "slide5.png"}, slideNames(result.Files))
	assert.Equal(t, []int{3, 4, 5}, ts.Requested())
	assert.False(t, result.StoppedEarly)

	f, err := os.Open(result.Files[0])
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestDownloadSlidesLastIndexFailureIsNotEarlyStop(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs")
	cfg.Max = 4

	result, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ts.Requested())
	assert.False(t, result.StoppedEarly)
}

func TestDownloadSlidesUnsupportedFormatBeforeNetwork(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/")
	cfg.Format = types.ImageFormat("gif")

	_, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, io.Discard)
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
	assert.Empty(t, ts.Requested())
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestDownloadSlidesZeroMax(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/")
	cfg.Max = 0

	result, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, ts.Requested())
	assert.DirExists(t, cfg.OutputDir)
}

// stubRasterizer fails or panics for selected calls.
type stubRasterizer struct {
	calls   int
	failOn  map[int]error
	panicOn map[int]bool
}

func (s *stubRasterizer) Name() string { return "stub" }

func (s *stubRasterizer) Rasterize(svg []byte) (image.Image, error) {
	s.calls++
	if s.panicOn[s.calls] {
		panic("malformed path data")
	}
	if err := s.failOn[s.calls]; err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, 16, 9)), nil
}

func TestDownloadSlidesConversionFailuresAreMisses(t *testing.T) {
	ok := map[int]bool{}
	for i := 1; i <= 10; i++ {
		ok[i] = true
	}
	ts := newSlideServer(t, ok, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/")
	cfg.Max = 10

	rz := &stubRasterizer{
		failOn:  map[int]error{2: errors.New("bad svg"), 5: errors.New("bad svg"), 6: errors.New("bad svg")},
		panicOn: map[int]bool{7: true},
	}
	var out bytes.Buffer
	result, err := DownloadSlides(context.Background(), ts.Client(), rz, cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"slide1.jpeg", "slide3.jpeg", "slide4.jpeg"}, slideNames(result.Files))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, ts.Requested())
	assert.Equal(t, 4, result.Failed)
	assert.Contains(t, out.String(), "panicked")
}

func TestDownloadSlidesAppliesDelay(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true, 2: true, 3: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/")
	cfg.Max = 3
	cfg.Delay = 30 * time.Millisecond

	start := time.Now()
	_, err := DownloadSlides(context.Background(), ts.Client(), raster.NewNativeRasterizer(1), cfg, io.Discard)
	require.NoError(t, err)
	// Two gaps between three attempts.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestDownloadSlidesContextCancelled(t *testing.T) {
	ts := newSlideServer(t, map[int]bool{1: true, 2: true, 3: true}, http.StatusNotFound)
	cfg := testConfig(t, ts.URL+"/svgs/")
	cfg.Max = 3
	cfg.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := DownloadSlides(ctx, ts.Client(), raster.NewNativeRasterizer(1), cfg, io.Discard)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []int{1}, ts.Requested())
	assert.Len(t, result.Files, 1)
}
