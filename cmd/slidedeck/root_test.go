// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/slidedeck/internal/deck"
	"github.com/pdiddy/slidedeck/pkg/types"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="320" height="180" viewBox="0 0 320 180">
  <rect x="0" y="0" width="320" height="180" fill="#204060"/>
</svg>`

var slidePath = regexp.MustCompile(`slide(\d+)\.svg$`)

// newSlideServer serves the indices in ok and 404s the rest.
func newSlideServer(t *testing.T, ok map[int]bool) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		m := slidePath.FindStringSubmatch(r.URL.Path)
		if m == nil {
			http.NotFound(w, r)
			return
		}
		n, _ := strconv.Atoi(m[1])
		if !ok[n] {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, sampleSVG)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeStreams(t, args...)
	return out, err
}

// executeStreams runs the root command with args and returns stdout and
// stderr.
func executeStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRunAssemblesDeckAndCleansUp(t *testing.T) {
	ts, _ := newSlideServer(t, map[int]bool{1: true, 2: true, 3: true, 5: true})
	dir := t.TempDir()
	slides := filepath.Join(dir, "slides")
	pptx := filepath.Join(dir, "deck.pptx")

	out, err := execute(t, ts.URL+"/svgs/",
		"--output-dir", slides, "--presentation", pptx, "--max", "10", "--delay", "0s")
	require.NoError(t, err)

	assert.Contains(t, out, "Successfully downloaded 4 slides")
	assert.Contains(t, out, "Presentation saved to "+pptx)
	assert.Contains(t, out, "Cleaned up temporary files")
	assert.Contains(t, out, "Summary: 4 slides in "+pptx+" (8 attempted, 4 missing)")
	assert.NoDirExists(t, slides)

	sum, err := deck.Inspect(pptx)
	require.NoError(t, err)
	require.Len(t, sum.Slides, 4)
	for i, s := range sum.Slides {
		assert.Equal(t, fmt.Sprintf("ppt/media/image%d.jpeg", i+1), s.Media)
		// 320x180 is exactly 16:9.
		assert.Equal(t, deck.Placement{Width: deck.DefaultCanvas.Width, Height: deck.DefaultCanvas.Height}, s.Placement)
	}
}

func TestRunKeepImages(t *testing.T) {
	ts, _ := newSlideServer(t, map[int]bool{1: true, 2: true})
	dir := t.TempDir()
	slides := filepath.Join(dir, "slides")
	pptx := filepath.Join(dir, "deck.pptx")

	_, err := execute(t, ts.URL+"/svgs/slide",
		"--output-dir", slides, "--presentation", pptx, "--delay", "0s",
		"--format", "png", "--keep-images")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(slides, "slide1.png"))
	assert.FileExists(t, filepath.Join(slides, "slide2.png"))
	assert.FileExists(t, pptx)
}

func TestRunCleanupFailureIsOnlyWarning(t *testing.T) {
	orig := removeDir
	t.Cleanup(func() { removeDir = orig })
	removeDir = func(dir string) (bool, error) {
		return false, &os.PathError{Op: "unlinkat", Path: dir, Err: os.ErrPermission}
	}

	ts, _ := newSlideServer(t, map[int]bool{1: true, 2: true})
	dir := t.TempDir()
	slides := filepath.Join(dir, "slides")
	pptx := filepath.Join(dir, "deck.pptx")

	out, errOut, err := executeStreams(t, ts.URL+"/svgs/",
		"--output-dir", slides, "--presentation", pptx, "--delay", "0s")
	require.NoError(t, err)

	assert.Contains(t, errOut, "level=WARN")
	assert.Contains(t, errOut, "could not delete temporary directory")
	assert.NotContains(t, out, "Cleaned up temporary files")
	assert.Contains(t, out, "Summary: 2 slides in "+pptx)
	assert.FileExists(t, pptx)
	assert.DirExists(t, slides)
}

func TestRunNoSlides(t *testing.T) {
	ts, calls := newSlideServer(t, map[int]bool{})
	dir := t.TempDir()
	pptx := filepath.Join(dir, "deck.pptx")

	out, err := execute(t, ts.URL+"/svgs/",
		"--output-dir", filepath.Join(dir, "slides"), "--presentation", pptx, "--delay", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "No slides downloaded")
	assert.NoFileExists(t, pptx)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestRunRejectsBadFormatBeforeNetwork(t *testing.T) {
	for _, format := range []string{"gif", "jpg", "webp", ""} {
		t.Run(format, func(t *testing.T) {
			ts, calls := newSlideServer(t, map[int]bool{1: true})
			dir := t.TempDir()

			_, err := execute(t, ts.URL+"/svgs/",
				"--output-dir", filepath.Join(dir, "slides"), "--format", format)
			assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
			assert.Zero(t, atomic.LoadInt32(calls))
			assert.NoDirExists(t, filepath.Join(dir, "slides"))
		})
	}
}

func TestRunRequiresBaseURL(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err)
}

func TestEnvOverridesDefault(t *testing.T) {
	ts, calls := newSlideServer(t, map[int]bool{1: true, 2: true, 3: true, 4: true})
	dir := t.TempDir()
	t.Setenv("SLIDEDECK_MAX", "2")
	t.Setenv("SLIDEDECK_DELAY", "0s")

	out, err := execute(t, ts.URL+"/svgs/",
		"--output-dir", filepath.Join(dir, "slides"), "--presentation", filepath.Join(dir, "deck.pptx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully downloaded 2 slides")
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestConfigFile(t *testing.T) {
	ts, _ := newSlideServer(t, map[int]bool{2: true, 3: true})
	dir := t.TempDir()
	slides := filepath.Join(dir, "slides")
	cfgPath := filepath.Join(dir, "slidedeck.yaml")
	cfgYAML := fmt.Sprintf("start: 2\nformat: png\ndelay: 0s\nkeep-images: true\noutput-dir: %q\n", slides)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	_, err := execute(t, ts.URL+"/svgs/",
		"--config", cfgPath, "--presentation", filepath.Join(dir, "deck.pptx"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(slides, "slide2.png"))
	assert.FileExists(t, filepath.Join(slides, "slide3.png"))
}

func TestConfigFileMissing(t *testing.T) {
	_, err := execute(t, "https://example.com/svgs/", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"negative max", []string{"--max", "-1"}, types.ErrInvalidMax},
		{"quality too high", []string{"--quality", "101"}, types.ErrInvalidQuality},
		{"zero scale", []string{"--scale", "0"}, types.ErrInvalidScale},
		{"zero timeout", []string{"--timeout", "0s"}, types.ErrInvalidTimeout},
		{"unknown rasterizer", []string{"--rasterizer", "inkscape"}, types.ErrUnsupportedRasterizer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"https://example.com/svgs/", "--output-dir", filepath.Join(t.TempDir(), "s")}, tt.args...)
			_, err := execute(t, args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}
