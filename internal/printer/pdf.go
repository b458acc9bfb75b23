package printer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	xdraw "golang.org/x/image/draw"
)

// maxSegmentWidth caps the pixel width of a page image. HiDPI captures come
// in at 2x and bloat the PDF without adding legibility on paper.
const maxSegmentWidth = 1600

// composePDF stitches PNG viewport segments into a multi-page A4 PDF, one
// segment per page, centered.
func composePDF(segments [][]byte) ([]byte, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no captured segments to compose")
	}

	readers := make([]io.Reader, 0, len(segments))
	for i, seg := range segments {
		scaled, err := downscale(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		readers = append(readers, bytes.NewReader(scaled))
	}

	imp, err := api.Import("form:A4, pos:c", types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("invalid import config: %w", err)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("image import failed: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resizes a PNG wider than maxSegmentWidth, preserving aspect
// ratio. Narrower images pass through untouched.
func downscale(data []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	b := src.Bounds()
	if b.Dx() <= maxSegmentWidth {
		return data, nil
	}

	h := b.Dy() * maxSegmentWidth / b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxSegmentWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
