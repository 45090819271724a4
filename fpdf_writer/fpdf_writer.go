// Package fpdf_writer implements the document encoder on top of gofpdf.
package fpdf_writer

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/phpdave11/gofpdf"

	"img2pdf/codec"
	"img2pdf/contracts"
	"img2pdf/geometry"
)

type Encoder struct{}

func (Encoder) NewDocument(title string) contracts.Document {
	return NewDocument(title)
}

type Document struct {
	pdf    *gofpdf.Fpdf
	pages  []*Page
	imgSeq int
	saved  bool
}

type Page struct {
	doc    *Document
	number int // 1-based gofpdf page number
	width  float64
	height float64
	layers []*Layer
}

type Layer struct {
	page *Page
	name string
}

func NewDocument(title string) *Document {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetProducer("img2pdf", true)
	return &Document{pdf: pdf}
}

func (d *Document) AddPage(widthPt, heightPt float64, label string) (contracts.PageIndex, contracts.LayerIndex) {
	// gofpdf appends after the current page, so move back to the last one
	// in case an earlier page was drawn on.
	if n := d.pdf.PageCount(); n > 0 {
		d.pdf.SetPage(n)
	}
	d.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: widthPt, Ht: heightPt})

	if label == "" {
		label = "Layer 1"
	}
	p := &Page{
		doc:    d,
		number: d.pdf.PageCount(),
		width:  widthPt,
		height: heightPt,
	}
	p.layers = []*Layer{{page: p, name: label}}
	d.pages = append(d.pages, p)
	return contracts.PageIndex(len(d.pages) - 1), 0
}

func (d *Document) Page(index contracts.PageIndex) contracts.Page {
	if index < 0 || int(index) >= len(d.pages) {
		return nil
	}
	return d.pages[index]
}

func (d *Document) PageCount() int { return len(d.pages) }

// Save writes the document. gofpdf closes the document on output, so Save
// succeeds only once.
func (d *Document) Save(w io.Writer) error {
	if d.saved {
		return contracts.ErrAlreadySaved
	}
	if len(d.pages) == 0 {
		return contracts.ErrEmptyDocument
	}
	d.saved = true
	return d.pdf.Output(w)
}

func (p *Page) Layer(index contracts.LayerIndex) contracts.Layer {
	if index < 0 || int(index) >= len(p.layers) {
		return nil
	}
	return p.layers[index]
}

func (l *Layer) Name() string { return l.name }

func (l *Layer) AddImage(img contracts.DecodedImage, t contracts.Transform) error {
	size, err := geometry.PageSize(img.Width(), img.Height(), t.DPI)
	if err != nil {
		return err
	}
	data, imageType, err := imagePayload(img)
	if err != nil {
		return fmt.Errorf("error encoding image: %w", err)
	}

	d := l.page.doc
	d.imgSeq++
	imageID := fmt.Sprintf("img_%d", d.imgSeq)
	opts := gofpdf.ImageOptions{
		ImageType: imageType,
		ReadDpi:   false,
	}
	d.pdf.RegisterImageOptionsReader(imageID, opts, bytes.NewReader(data))

	sx, sy := t.Scale()
	w, h := size.WidthPt*sx, size.HeightPt*sy
	// gofpdf measures y from the top edge
	x := t.TranslateX
	y := l.page.height - t.TranslateY - h

	d.pdf.SetPage(l.page.number)
	d.pdf.ImageOptions(imageID, x, y, w, h, false, opts, 0, "")
	return d.pdf.Error()
}

func imagePayload(img contracts.DecodedImage) ([]byte, string, error) {
	if img.Format() == "jpeg" && len(img.Encoded()) > 0 {
		switch img.Image().(type) {
		case *image.Gray, *image.YCbCr:
			return img.Encoded(), "JPG", nil
		}
	}
	data, err := codec.EncodePNG(img.Image())
	if err != nil {
		return nil, "", err
	}
	return data, "PNG", nil
}
