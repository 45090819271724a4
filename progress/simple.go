package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Simple is a single progressbar for output that is not a terminal.
type Simple struct {
	bar  *progressbar.ProgressBar
	done int
}

func NewSimple(w io.Writer, description string, total int) *Simple {
	if w == nil {
		w = os.Stderr
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Simple{bar: bar}
}

func (s *Simple) OnItemDone() {
	s.done++
	_ = s.bar.Add(1)
}

func (s *Simple) OnBatchDone() {
	_ = s.bar.Finish()
}

func (s *Simple) Done() int { return s.done }

// Nop discards progress.
type Nop struct{}

func (Nop) OnItemDone()  {}
func (Nop) OnBatchDone() {}
