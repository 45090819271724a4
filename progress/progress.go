// Package progress renders assembler progress on the terminal.
package progress

import (
	"io"
	"os"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Batch draws one bar per document. Bars render top to bottom in the order
// they were tracked, or right after the bar passed to TrackAfter.
type Batch struct {
	mu   sync.Mutex
	p    *mpb.Progress
	bars []*Bar
}

// Bar follows a single document. It implements contracts.Observer.
type Bar struct {
	name string
	bar  *mpb.Bar
}

// NewBatch renders to w, or to stderr when w is nil.
func NewBatch(w io.Writer) *Batch {
	if w == nil {
		w = os.Stderr
	}
	return &Batch{p: mpb.New(mpb.WithOutput(w), mpb.WithWidth(64))}
}

// Bars start at total 0: mpb ignores SetTotal(-1, true) on a bar added with a
// positive total, and OnBatchDone relies on it.
func (b *Batch) newBar(name string, total int) *Bar {
	bar := b.p.AddBar(0,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DSyncSpaceR}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 12}),
			decor.OnComplete(
				decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 12}),
				" done",
			),
		),
	)
	bar.SetTotal(int64(total), false)
	return &Bar{name: name, bar: bar}
}

// Track appends a bar for a document of total pages.
func (b *Batch) Track(name string, total int) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()

	bar := b.newBar(name, total)
	b.bars = append(b.bars, bar)
	b.reorder()
	return bar
}

// TrackAfter inserts a bar directly below prev. An unknown prev appends.
func (b *Batch) TrackAfter(prev *Bar, name string, total int) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()

	bar := b.newBar(name, total)
	at := len(b.bars)
	for i, existing := range b.bars {
		if existing == prev {
			at = i + 1
			break
		}
	}
	b.bars = append(b.bars, nil)
	copy(b.bars[at+1:], b.bars[at:])
	b.bars[at] = bar
	b.reorder()
	return bar
}

// reorder maps list position to render priority; lower renders higher.
func (b *Batch) reorder() {
	for i, bar := range b.bars {
		bar.bar.SetPriority(i)
	}
}

// Names lists the tracked bars in render order.
func (b *Batch) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, len(b.bars))
	for i, bar := range b.bars {
		names[i] = bar.name
	}
	return names
}

// Wait blocks until every bar has completed or been aborted.
func (b *Batch) Wait() {
	b.p.Wait()
}

func (b *Bar) Name() string { return b.name }

func (b *Bar) OnItemDone() { b.bar.Increment() }

// OnBatchDone completes the bar at its current count.
func (b *Bar) OnBatchDone() { b.bar.SetTotal(-1, true) }

// Abort stops the bar and leaves it on screen.
func (b *Bar) Abort() { b.bar.Abort(false) }

func (b *Bar) Current() int64 { return b.bar.Current() }

func (b *Bar) Completed() bool { return b.bar.Completed() }

// Aborted reports whether the bar ended without completing.
func (b *Bar) Aborted() bool { return b.bar.Aborted() }
