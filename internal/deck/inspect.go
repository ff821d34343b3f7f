// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
)

// ErrSlideCount is returned by Verify when a saved presentation does not hold
// the expected number of slides.
var ErrSlideCount = errors.New("unexpected slide count")

// SlideInfo describes one slide of a written presentation.
type SlideInfo struct {
	// Part is the slide's package part name, e.g. "ppt/slides/slide1.xml".
	Part string

	// Media is the part name of the embedded picture.
	Media string

	// Placement is the picture's position and size in EMU.
	Placement Placement
}

// Summary describes a written presentation.
type Summary struct {
	Canvas Canvas
	Slides []SlideInfo
}

type relationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type presentationPart struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	Size struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type slidePart struct {
	Pics []struct {
		BlipFill struct {
			Blip struct {
				Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
			} `xml:"blip"`
		} `xml:"blipFill"`
		Off struct {
			X int64 `xml:"x,attr"`
			Y int64 `xml:"y,attr"`
		} `xml:"spPr>xfrm>off"`
		Ext struct {
			Cx int64 `xml:"cx,attr"`
			Cy int64 `xml:"cy,attr"`
		} `xml:"spPr>xfrm>ext"`
	} `xml:"cSld>spTree>pic"`
}

// Inspect reopens a presentation and lists its slides in presentation order.
func Inspect(file string) (Summary, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return Summary{}, fmt.Errorf("opening %s: %w", file, err)
	}
	defer zr.Close()

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	var pres presentationPart
	if err := decodePart(parts, "ppt/presentation.xml", &pres); err != nil {
		return Summary{}, err
	}
	presRels, err := readRels(parts, "ppt/_rels/presentation.xml.rels", "ppt")
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Canvas: Canvas{Width: pres.Size.Cx, Height: pres.Size.Cy}}
	for _, id := range pres.SlideIDs {
		slidePath, ok := presRels[id.RelID]
		if !ok {
			return Summary{}, fmt.Errorf("presentation references unknown relationship %s", id.RelID)
		}
		var sp slidePart
		if err := decodePart(parts, slidePath, &sp); err != nil {
			return Summary{}, err
		}
		if len(sp.Pics) == 0 {
			return Summary{}, fmt.Errorf("%s has no picture", slidePath)
		}
		dir, base := path.Split(slidePath)
		slideRels, err := readRels(parts, path.Join(dir, "_rels", base+".rels"), dir)
		if err != nil {
			return Summary{}, err
		}
		pic := sp.Pics[0]
		sum.Slides = append(sum.Slides, SlideInfo{
			Part:  slidePath,
			Media: slideRels[pic.BlipFill.Blip.Embed],
			Placement: Placement{
				X:      pic.Off.X,
				Y:      pic.Off.Y,
				Width:  pic.Ext.Cx,
				Height: pic.Ext.Cy,
			},
		})
	}
	return sum, nil
}

// Verify reopens a saved presentation and checks that it lists want slides,
// each with an embedded picture.
func Verify(file string, want int) (Summary, error) {
	sum, err := Inspect(file)
	if err != nil {
		return Summary{}, err
	}
	if len(sum.Slides) != want {
		return sum, fmt.Errorf("%w: %s has %d slides, want %d", ErrSlideCount, file, len(sum.Slides), want)
	}
	for _, s := range sum.Slides {
		if s.Media == "" {
			return sum, fmt.Errorf("%s: %s has no embedded image", file, s.Part)
		}
	}
	return sum, nil
}

// readRels maps relationship IDs to part names resolved against baseDir.
func readRels(parts map[string]*zip.File, name, baseDir string) (map[string]string, error) {
	var rels relationships
	if err := decodePart(parts, name, &rels); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		out[r.ID] = path.Join(baseDir, r.Target)
	}
	return out, nil
}

func decodePart(parts map[string]*zip.File, name string, v any) error {
	f, ok := parts[name]
	if !ok {
		return fmt.Errorf("missing part %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(io.LimitReader(rc, 8<<20)).Decode(v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}
