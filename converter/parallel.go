package converter

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"img2pdf/contracts"
)

type indexedProducer struct {
	n  int
	fn func(int) (contracts.DecodedImage, error)
}

func (p indexedProducer) Len() int { return p.n }

func (p indexedProducer) Produce(i int) (contracts.DecodedImage, error) { return p.fn(i) }

// Indexed turns fn into a Producer of n images. fn must be safe to call
// from several goroutines at once.
func Indexed(n int, fn func(index int) (contracts.DecodedImage, error)) contracts.Producer {
	return indexedProducer{n: n, fn: fn}
}

// AddImagesParallel runs every Produce call of p on a bounded pool, waits
// for all of them and appends the results in index order. If any call
// fails, nothing from p is added and the failure with the lowest index is
// recorded.
func (b *ImageToPdf) AddImagesParallel(p contracts.Producer) *ImageToPdf {
	if !b.usable() {
		return b
	}
	images, err := produceAll(p, b.Workers())
	if err != nil {
		b.err = err
		return b
	}
	b.images = append(b.images, images...)
	return b
}

func produceAll(p contracts.Producer, workers int) ([]contracts.DecodedImage, error) {
	n := p.Len()
	if n <= 0 {
		return nil, nil
	}

	results := make([]contracts.DecodedImage, n)
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			img, err := p.Produce(i)
			switch {
			case err != nil:
				errs[i] = err
			case img == nil:
				errs[i] = contracts.ErrInvalidImage
			default:
				results[i] = img
			}
			return errs[i]
		})
	}

	if g.Wait() != nil {
		for i, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("%w: image %d: %w", contracts.ErrParallelIngestion, i, err)
			}
		}
	}
	return results, nil
}
