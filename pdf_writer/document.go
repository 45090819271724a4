package pdf_writer

import (
	"fmt"
	"io"

	"img2pdf/contracts"
	"img2pdf/geometry"
)

// Encoder creates documents serialized by this package's writer.
type Encoder struct{}

func (Encoder) NewDocument(title string) contracts.Document {
	return NewDocument(title)
}

// Document keeps pages in memory until Save. Image data is encoded into
// XObject streams when an image is added, so Save only copies bytes.
type Document struct {
	title string
	pages []*Page
}

type Page struct {
	width  float64
	height float64
	layers []*Layer
}

type Layer struct {
	name       string
	placements []placement
}

type placement struct {
	obj           *imageObject
	x, y          float64
	width, height float64
}

func NewDocument(title string) *Document {
	return &Document{title: title}
}

func (d *Document) Title() string { return d.title }

func (d *Document) AddPage(widthPt, heightPt float64, label string) (contracts.PageIndex, contracts.LayerIndex) {
	if label == "" {
		label = "Layer 1"
	}
	d.pages = append(d.pages, &Page{
		width:  widthPt,
		height: heightPt,
		layers: []*Layer{{name: label}},
	})
	return contracts.PageIndex(len(d.pages) - 1), 0
}

func (d *Document) Page(index contracts.PageIndex) contracts.Page {
	if index < 0 || int(index) >= len(d.pages) {
		return nil
	}
	return d.pages[index]
}

func (d *Document) PageCount() int { return len(d.pages) }

// Size returns the MediaBox of page index.
func (d *Document) Size(index contracts.PageIndex) (float64, float64, bool) {
	if index < 0 || int(index) >= len(d.pages) {
		return 0, 0, false
	}
	p := d.pages[index]
	return p.width, p.height, true
}

func (d *Document) Save(w io.Writer) error {
	pw := newPDFWriter(w)
	return pw.writeDocument(d)
}

func (p *Page) Layer(index contracts.LayerIndex) contracts.Layer {
	if index < 0 || int(index) >= len(p.layers) {
		return nil
	}
	return p.layers[index]
}

// AddLayer appends an empty layer drawn above the existing ones.
func (p *Page) AddLayer(name string) contracts.LayerIndex {
	p.layers = append(p.layers, &Layer{name: name})
	return contracts.LayerIndex(len(p.layers) - 1)
}

func (l *Layer) Name() string { return l.name }

func (l *Layer) AddImage(img contracts.DecodedImage, t contracts.Transform) error {
	size, err := geometry.PageSize(img.Width(), img.Height(), t.DPI)
	if err != nil {
		return err
	}
	obj, err := encodeImage(img)
	if err != nil {
		return fmt.Errorf("error encoding image: %w", err)
	}
	sx, sy := t.Scale()
	l.placements = append(l.placements, placement{
		obj:    obj,
		x:      t.TranslateX,
		y:      t.TranslateY,
		width:  size.WidthPt * sx,
		height: size.HeightPt * sy,
	})
	return nil
}
