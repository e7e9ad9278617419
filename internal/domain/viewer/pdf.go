package viewer

import (
	"fmt"
	"io"
	"math"

	"github.com/ledongthuc/pdf"
)

// US Letter, used when a page declares no usable box.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// maxInheritDepth bounds the walk up the page tree.
	maxInheritDepth = 32
)

// PageGeometry is the native size of a page in PDF points, after rotation.
type PageGeometry struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document exposes the page geometry of a parsed PDF.
type Document interface {
	NumPages() int
	Page(index int) (PageGeometry, error)
}

// Parser opens a PDF.
type Parser interface {
	Parse(r io.ReaderAt, size int64) (Document, error)
}

// PDFParser reads page geometry with github.com/ledongthuc/pdf. The library
// panics on some malformed inputs; those panics are returned as errors.
type PDFParser struct{}

func (PDFParser) Parse(r io.ReaderAt, size int64) (doc Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("pdf: malformed document: %v", rec)
		}
	}()
	rd, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &pdfDocument{r: rd}, nil
}

type pdfDocument struct {
	r *pdf.Reader
}

func (d *pdfDocument) NumPages() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.r.NumPage()
}

// Page returns the geometry of the zero-based page index.
func (d *pdfDocument) Page(index int) (g PageGeometry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf: page %d: %v", index, rec)
		}
	}()
	p := d.r.Page(index + 1)
	if p.V.IsNull() {
		return PageGeometry{}, fmt.Errorf("pdf: page %d not found", index)
	}
	w, h := pageSize(p.V)
	return PageGeometry{Index: index, Width: w, Height: h}, nil
}

// pageSize resolves CropBox, then MediaBox, through the page tree, and swaps
// the axes for pages rotated by a quarter turn.
func pageSize(page pdf.Value) (float64, float64) {
	box, ok := inheritedBox(page, "CropBox")
	if !ok {
		box, ok = inheritedBox(page, "MediaBox")
	}
	w, h := defaultPageWidth, defaultPageHeight
	if ok {
		w = math.Abs(box[2] - box[0])
		h = math.Abs(box[3] - box[1])
	}
	if rot := inherited(page, "Rotate"); !rot.IsNull() {
		if r := int(rot.Int64()) % 180; r == 90 || r == -90 {
			w, h = h, w
		}
	}
	return w, h
}

func inherited(v pdf.Value, key string) pdf.Value {
	for depth := 0; depth < maxInheritDepth && !v.IsNull(); depth++ {
		if got := v.Key(key); !got.IsNull() {
			return got
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

func inheritedBox(v pdf.Value, key string) ([4]float64, bool) {
	var box [4]float64
	arr := inherited(v, key)
	if arr.Kind() != pdf.Array || arr.Len() != 4 {
		return box, false
	}
	for i := 0; i < 4; i++ {
		box[i] = arr.Index(i).Float64()
	}
	if box[2] == box[0] || box[3] == box[1] {
		return box, false
	}
	return box, true
}
