// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck assembles raster slide images into a PowerPoint (.pptx)
// presentation, one blank-layout slide per image.
package deck

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/schollz/progressbar/v3"
)

// now is the clock used for document properties. Tests override this.
var now = time.Now

// slide is the template data for one page.
type slide struct {
	Number    int
	ID        int
	RelID     int
	Source    string
	MediaName string
	Placement Placement
	data      []byte
}

// document is the template data for the package-level parts.
type document struct {
	Title   string
	Created string
	Canvas  Canvas
	Slides  []slide
}

// Build writes a presentation to dest with one slide per image, in the order
// given. Each image is scaled to fit the default 16:9 canvas and centered.
//
// The package is written to a temporary file next to dest and renamed into
// place, so dest is either absent, the previous file, or the complete deck.
func Build(ctx context.Context, images []string, dest string, w io.Writer) error {
	return buildWithCanvas(ctx, images, dest, DefaultCanvas, w)
}

// buildWithCanvas is Build with an explicit slide size.
func buildWithCanvas(ctx context.Context, images []string, dest string, c Canvas, w io.Writer) error {
	if len(images) == 0 {
		return fmt.Errorf("no images to assemble")
	}

	doc := document{
		Title:   strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest)),
		Created: now().UTC().Format(time.RFC3339),
		Canvas:  c,
		Slides:  make([]slide, 0, len(images)),
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Creating presentation"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
	)
	for i, path := range images {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := loadSlide(path, i+1, c)
		if err != nil {
			return err
		}
		doc.Slides = append(doc.Slides, s)
		bar.Add(1)
	}
	fmt.Fprintln(w)

	if err := writeAtomic(dest, func(f io.Writer) error { return writePackage(f, doc) }); err != nil {
		return fmt.Errorf("saving presentation %s: %w", dest, err)
	}
	fmt.Fprintf(w, "Presentation saved to %s\n", dest)
	return nil
}

// loadSlide reads an image and computes its placement on the canvas.
func loadSlide(path string, number int, c Canvas) (slide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return slide{}, fmt.Errorf("reading image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return slide{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	p, err := Fit(cfg.Width, cfg.Height, c)
	if err != nil {
		return slide{}, fmt.Errorf("placing %s: %w", filepath.Base(path), err)
	}
	return slide{
		Number:    number,
		ID:        firstSlideID + number - 1,
		RelID:     firstSlideRID + number - 1,
		Source:    filepath.Base(path),
		MediaName: fmt.Sprintf("image%d.%s", number, format),
		Placement: p,
		data:      data,
	}, nil
}

// writePackage streams every part of the presentation into a zip archive.
func writePackage(out io.Writer, doc document) error {
	zw := zip.NewWriter(out)

	parts := []struct {
		name string
		tmpl *template.Template
	}{
		{"[Content_Types].xml", contentTypesTmpl},
		{"_rels/.rels", rootRelsTmpl},
		{"docProps/core.xml", coreTmpl},
		{"docProps/app.xml", appTmpl},
		{"ppt/presentation.xml", presentationTmpl},
		{"ppt/_rels/presentation.xml.rels", presentationRelsTmpl},
		{"ppt/presProps.xml", presPropsTmpl},
		{"ppt/viewProps.xml", viewPropsTmpl},
		{"ppt/tableStyles.xml", tableStylesTmpl},
		{"ppt/slideMasters/slideMaster1.xml", masterTmpl},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", masterRelsTmpl},
		{"ppt/slideLayouts/slideLayout1.xml", layoutTmpl},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", layoutRelsTmpl},
		{"ppt/theme/theme1.xml", themeTmpl},
	}
	for _, p := range parts {
		if err := writeTemplate(zw, p.name, p.tmpl, doc); err != nil {
			return err
		}
	}

	for _, s := range doc.Slides {
		if err := writeTemplate(zw, fmt.Sprintf("ppt/slides/slide%d.xml", s.Number), slideTmpl, s); err != nil {
			return err
		}
		if err := writeTemplate(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.Number), slideRelsTmpl, s); err != nil {
			return err
		}
		// Images are already compressed.
		mw, err := zw.CreateHeader(&zip.FileHeader{Name: "ppt/media/" + s.MediaName, Method: zip.Store})
		if err != nil {
			return fmt.Errorf("adding %s: %w", s.MediaName, err)
		}
		if _, err := mw.Write(s.data); err != nil {
			return fmt.Errorf("writing %s: %w", s.MediaName, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

func writeTemplate(zw *zip.Writer, name string, tmpl *template.Template, data any) error {
	pw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if err := tmpl.Execute(pw, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}

// writeAtomic writes dest through a temporary file in the same directory and
// renames it into place on success.
func writeAtomic(dest string, write func(io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".slidedeck-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := write(tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
