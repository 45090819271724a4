// Package converter assembles decoded images into a paginated document,
// one image per page, each page sized to its image at the configured DPI.
package converter

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"img2pdf/contracts"
	"img2pdf/geometry"
	"img2pdf/pdf_writer"
)

type createConfig struct {
	encoder  contracts.Encoder
	observer contracts.Observer
}

type CreateOption func(*createConfig)

// WithEncoder selects the document encoder. The default is pdf_writer.
func WithEncoder(e contracts.Encoder) CreateOption {
	return func(c *createConfig) { c.encoder = e }
}

// WithObserver reports one OnItemDone per placed page and OnBatchDone after
// the last one. The observer never sees a failed assembly finish.
func WithObserver(o contracts.Observer) CreateOption {
	return func(c *createConfig) { c.observer = o }
}

// Create consumes the builder and lays out one page per image, in order.
// On any failure the partially built document is dropped.
func (b *ImageToPdf) Create(opts ...CreateOption) (contracts.Document, error) {
	if b.consumed {
		return nil, contracts.ErrBuilderConsumed
	}
	b.consumed = true
	images := b.images
	b.images = nil

	if b.err != nil {
		return nil, b.err
	}
	dpi := b.dpi
	if err := geometry.ValidateDPI(dpi); err != nil {
		return nil, err
	}

	cfg := createConfig{encoder: pdf_writer.Encoder{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc := cfg.encoder.NewDocument(b.title)
	for i, img := range images {
		if err := addPage(doc, img, dpi); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		if cfg.observer != nil {
			cfg.observer.OnItemDone()
		}
	}
	if cfg.observer != nil {
		cfg.observer.OnBatchDone()
	}
	return doc, nil
}

// CreateWithProgress is Create with an observer.
func (b *ImageToPdf) CreateWithProgress(o contracts.Observer, opts ...CreateOption) (contracts.Document, error) {
	return b.Create(append(opts, WithObserver(o))...)
}

func addPage(doc contracts.Document, img contracts.DecodedImage, dpi float64) error {
	size, err := geometry.PageSize(img.Width(), img.Height(), dpi)
	if err != nil {
		return err
	}
	pageID, layerID := doc.AddPage(size.WidthPt, size.HeightPt, "")

	page := doc.Page(pageID)
	if page == nil {
		return fmt.Errorf("%w: %d", contracts.ErrUnknownPage, pageID)
	}
	layer := page.Layer(layerID)
	if layer == nil {
		return fmt.Errorf("%w: %d", contracts.ErrUnknownLayer, layerID)
	}
	return layer.AddImage(img, contracts.Transform{DPI: dpi})
}

// Save writes doc to w through a buffer. Encoder and I/O errors are
// returned as they are.
func Save(doc contracts.Document, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := doc.Save(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// SaveFile writes doc next to path and renames it into place once complete.
func SaveFile(doc contracts.Document, path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if err := Save(doc, f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
