package converter

import (
	"fmt"
	"runtime"

	"img2pdf/contracts"
	"img2pdf/geometry"
)

const DefaultDPI = 300.0

// ImageToPdf accumulates images and settings for one document. Every method
// returns the receiver so calls can be chained. The first failure is kept
// and turns later calls into no-ops; Create reports it.
//
// An ImageToPdf has a single owner and is not safe for concurrent use.
type ImageToPdf struct {
	images   []contracts.DecodedImage
	dpi      float64
	title    string
	workers  int
	err      error
	consumed bool
}

func New() *ImageToPdf {
	return &ImageToPdf{dpi: DefaultDPI}
}

// NewWithImages starts from an existing image list, which is copied.
func NewWithImages(images []contracts.DecodedImage, dpi float64, title string) *ImageToPdf {
	b := New().SetDPI(dpi).SetTitle(title)
	return b.AddImages(images...)
}

func (b *ImageToPdf) usable() bool {
	if b.consumed {
		if b.err == nil {
			b.err = contracts.ErrBuilderConsumed
		}
		return false
	}
	return b.err == nil
}

func (b *ImageToPdf) AddImage(img contracts.DecodedImage) *ImageToPdf {
	if !b.usable() {
		return b
	}
	if img == nil {
		b.err = fmt.Errorf("%w: nil image at position %d", contracts.ErrInvalidImage, len(b.images))
		return b
	}
	b.images = append(b.images, img)
	return b
}

// AddImages appends images in the order given. A nil entry fails the whole
// call and nothing from it is added.
func (b *ImageToPdf) AddImages(images ...contracts.DecodedImage) *ImageToPdf {
	if !b.usable() {
		return b
	}
	for i, img := range images {
		if img == nil {
			b.err = fmt.Errorf("%w: nil image at position %d", contracts.ErrInvalidImage, len(b.images)+i)
			return b
		}
	}
	b.images = append(b.images, images...)
	return b
}

func (b *ImageToPdf) SetDPI(dpi float64) *ImageToPdf {
	if !b.usable() {
		return b
	}
	if err := geometry.ValidateDPI(dpi); err != nil {
		b.err = err
		return b
	}
	b.dpi = dpi
	return b
}

func (b *ImageToPdf) SetTitle(title string) *ImageToPdf {
	if !b.usable() {
		return b
	}
	b.title = title
	return b
}

// SetWorkers bounds the goroutines used by AddImagesParallel. Zero or less
// selects one less than the number of CPUs.
func (b *ImageToPdf) SetWorkers(n int) *ImageToPdf {
	if !b.usable() {
		return b
	}
	b.workers = n
	return b
}

func (b *ImageToPdf) Len() int       { return len(b.images) }
func (b *ImageToPdf) DPI() float64   { return b.dpi }
func (b *ImageToPdf) Title() string  { return b.title }
func (b *ImageToPdf) Err() error     { return b.err }
func (b *ImageToPdf) Consumed() bool { return b.consumed }

func (b *ImageToPdf) Workers() int {
	if b.workers > 0 {
		return b.workers
	}
	return max(runtime.NumCPU()-1, 1)
}

// ClearErr drops a recorded failure. Images added before the failure are
// kept. It has no effect on a consumed builder.
func (b *ImageToPdf) ClearErr() *ImageToPdf {
	if !b.consumed {
		b.err = nil
	}
	return b
}
