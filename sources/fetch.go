package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"img2pdf/codec"
	"img2pdf/contracts"
)

type FetchConfig struct {
	Retries int
	Timeout time.Duration
	// InitialInterval is the first retry delay. Zero keeps the backoff default.
	InitialInterval time.Duration
}

// Fetcher reads sources from disk or over HTTP.
type Fetcher struct {
	client *http.Client
	cfg    FetchConfig
	log    zerolog.Logger
}

func NewFetcher(cfg FetchConfig, log zerolog.Logger) *Fetcher {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log.With().Str("component", "fetcher").Logger(),
	}
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.url, e.code, http.StatusText(e.code))
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch returns the bytes of src, a file path or an http(s) URL. Network
// errors, 5xx and 429 responses are retried; other 4xx responses are not.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if !isURL(src) {
		return os.ReadFile(src)
	}

	eb := backoff.NewExponentialBackOff()
	if f.cfg.InitialInterval > 0 {
		eb.InitialInterval = f.cfg.InitialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(f.cfg.Retries)), ctx)

	var data []byte
	op := func() error {
		var err error
		data, err = f.get(ctx, src)
		var se *statusError
		if errors.As(err, &se) && se.code < 500 && se.code != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		f.log.Warn().Err(err).Str("url", src).Dur("retry_in", wait).Msg("fetch failed, retrying")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	f.log.Debug().Str("url", src).Int("bytes", len(data)).Msg("fetched")
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{url: url, code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type producer struct {
	ctx     context.Context
	fetcher *Fetcher
	srcs    []string
}

// NewProducer fetches and decodes srcs[i] on each Produce(i) call.
func NewProducer(ctx context.Context, fetcher *Fetcher, srcs []string) contracts.Producer {
	return &producer{ctx: ctx, fetcher: fetcher, srcs: srcs}
}

func (p *producer) Len() int { return len(p.srcs) }

func (p *producer) Produce(i int) (contracts.DecodedImage, error) {
	if i < 0 || i >= len(p.srcs) {
		return nil, fmt.Errorf("%w: no source at index %d", contracts.ErrInvalidImage, i)
	}
	src := p.srcs[i]
	data, err := p.fetcher.Fetch(p.ctx, src)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", src, err)
	}
	img, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return img, nil
}
