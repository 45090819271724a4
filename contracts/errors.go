package contracts

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every configuration failure: a bad DPI or
// a pixel dimension the encoders cannot represent.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrInvalidDPI = fmt.Errorf("%w: dpi must be a finite number greater than zero", ErrConfiguration)
	ErrPixelRange = fmt.Errorf("%w: pixel dimension out of range", ErrConfiguration)
)

var (
	ErrDecode            = errors.New("cannot decode image")
	ErrInvalidImage      = errors.New("invalid image")
	ErrParallelIngestion = errors.New("parallel ingestion failed")
	ErrBuilderConsumed   = errors.New("builder already consumed")
)

// Encoder errors.
var (
	ErrUnknownPage   = errors.New("unknown page")
	ErrUnknownLayer  = errors.New("unknown layer")
	ErrEmptyDocument = errors.New("document has no pages")
	ErrAlreadySaved  = errors.New("document already saved")
)
