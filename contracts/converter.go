package contracts

import (
	"image"
	"io"
)

// DecodedImage is a raster image produced by the codec. Implementations are
// immutable once built.
type DecodedImage interface {
	Width() int
	Height() int
	Image() image.Image
	// Format is the codec name ("jpeg", "png", ...) or "" for in-memory images.
	Format() string
	// Encoded returns the original bytes when the encoder may embed them
	// as-is, nil otherwise.
	Encoded() []byte
}

// Producer yields images by index. Produce may be called concurrently for
// different indexes.
type Producer interface {
	Len() int
	Produce(index int) (DecodedImage, error)
}

// Observer receives progress signals from the assembler.
type Observer interface {
	OnItemDone()
	OnBatchDone()
}

type PageIndex int

type LayerIndex int

// Transform positions an image on a layer. TranslateX/Y are in points from
// the bottom-left page corner. A zero ScaleX/ScaleY means 1. DPI sets the
// image's natural size, pixels*72/DPI.
type Transform struct {
	TranslateX float64
	TranslateY float64
	ScaleX     float64
	ScaleY     float64
	DPI        float64
}

func (t Transform) Scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Encoder creates empty documents.
type Encoder interface {
	NewDocument(title string) Document
}

// Document is the handle an encoder hands back. Pages keep insertion order.
type Document interface {
	AddPage(widthPt, heightPt float64, label string) (PageIndex, LayerIndex)
	// Page returns nil for an unknown index.
	Page(index PageIndex) Page
	PageCount() int
	Save(w io.Writer) error
}

type Page interface {
	// Layer returns nil for an unknown index.
	Layer(index LayerIndex) Layer
}

type Layer interface {
	AddImage(img DecodedImage, t Transform) error
}
