package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"img2pdf/config"
	"img2pdf/contracts"
	"img2pdf/converter"
	"img2pdf/fpdf_writer"
	"img2pdf/pdf_writer"
	"img2pdf/progress"
	"img2pdf/sources"
)

// job is one output document.
type job struct {
	name   string
	srcs   []string
	output string
}

// stages hands out the observers for decoding and assembling a document.
type stages interface {
	decode(name string, total int) contracts.Observer
	assemble(decode contracts.Observer, name string, total int) contracts.Observer
	wait()
}

type barStages struct{ batch *progress.Batch }

func (s barStages) decode(name string, total int) contracts.Observer {
	return s.batch.Track(name+" decode", total)
}

// assemble places the page bar right under the document's decode bar.
func (s barStages) assemble(decode contracts.Observer, name string, total int) contracts.Observer {
	prev, _ := decode.(*progress.Bar)
	return s.batch.TrackAfter(prev, name+" pages", total)
}

func (s barStages) wait() { s.batch.Wait() }

type simpleStages struct{}

func (simpleStages) decode(string, int) contracts.Observer { return progress.Nop{} }

func (simpleStages) assemble(_ contracts.Observer, name string, total int) contracts.Observer {
	return progress.NewSimple(os.Stderr, name, total)
}

func (simpleStages) wait() {}

type quietStages struct{}

func (quietStages) decode(string, int) contracts.Observer { return progress.Nop{} }

func (quietStages) assemble(contracts.Observer, string, int) contracts.Observer {
	return progress.Nop{}
}

func (quietStages) wait() {}

func newStages(c *config.Config) stages {
	switch c.Progress {
	case "bars":
		return barStages{batch: progress.NewBatch(os.Stderr)}
	case "simple":
		return simpleStages{}
	default:
		return quietStages{}
	}
}

func encoderFor(c *config.Config) contracts.Encoder {
	if c.Encoder == "fpdf" {
		return fpdf_writer.Encoder{}
	}
	return pdf_writer.Encoder{}
}

// observedProducer reports each decoded image and keeps the first one.
type observedProducer struct {
	contracts.Producer
	obs   contracts.Observer
	first contracts.DecodedImage
}

func (p *observedProducer) Produce(i int) (contracts.DecodedImage, error) {
	img, err := p.Producer.Produce(i)
	if err != nil {
		return nil, err
	}
	if i == 0 {
		p.first = img
	}
	p.obs.OnItemDone()
	return img, nil
}

type resolutionSource interface {
	Resolution() (dpiX, dpiY float64, ok bool)
}

func abort(obs contracts.Observer) {
	if bar, ok := obs.(*progress.Bar); ok {
		bar.Abort()
	}
}

func ingest(b *converter.ImageToPdf, p contracts.Producer, parallel bool) error {
	if parallel {
		return b.AddImagesParallel(p).Err()
	}
	for i := 0; i < p.Len(); i++ {
		img, err := p.Produce(i)
		if err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		if err := b.AddImage(img).Err(); err != nil {
			return err
		}
	}
	return nil
}

// convert builds and writes one document.
// decodeObs comes from st.decode so callers control where the bars go.
func convert(ctx context.Context, j job, st stages, decodeObs contracts.Observer, fetcher *sources.Fetcher) error {
	start := time.Now()
	log := logger.With().Str("document", j.name).Int("images", len(j.srcs)).Logger()

	producer := &observedProducer{
		Producer: sources.NewProducer(ctx, fetcher, j.srcs),
		obs:      decodeObs,
	}

	b := converter.New().SetTitle(cfg.Title).SetWorkers(cfg.Workers)
	if err := ingest(b, producer, cfg.Parallel); err != nil {
		abort(decodeObs)
		return err
	}
	decodeObs.OnBatchDone()

	dpi := cfg.DPI
	if cfg.DPIFromSource && producer.first != nil {
		if r, ok := producer.first.(resolutionSource); ok {
			if x, _, ok := r.Resolution(); ok {
				dpi = x
				log.Debug().Float64("dpi", dpi).Msg("using resolution of first image")
			}
		}
	}
	b.SetDPI(dpi)

	pagesObs := st.assemble(decodeObs, j.name, b.Len())
	doc, err := b.Create(
		converter.WithEncoder(encoderFor(cfg)),
		converter.WithObserver(pagesObs),
	)
	if err != nil {
		abort(pagesObs)
		return err
	}
	if err := converter.SaveFile(doc, j.output); err != nil {
		return fmt.Errorf("error writing %s: %w", j.output, err)
	}

	log.Info().
		Str("output", j.output).
		Int("pages", doc.PageCount()).
		Dur("took", time.Since(start)).
		Msg("document written")
	return nil
}

func newFetcher() *sources.Fetcher {
	return sources.NewFetcher(sources.FetchConfig{
		Retries: cfg.Fetch.Retries,
		Timeout: cfg.Fetch.Timeout,
	}, logger)
}

func runConvert(ctx context.Context, args []string, output string) error {
	srcs, err := sources.Expand(args)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}

	st := newStages(cfg)
	j := job{name: output, srcs: srcs, output: output}
	err = convert(ctx, j, st, st.decode(j.name, len(j.srcs)), newFetcher())
	st.wait()
	if err != nil {
		return err
	}
	successf("%s: %d pages", output, len(srcs))
	return nil
}
