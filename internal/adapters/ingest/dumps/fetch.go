package dumps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"pvcreek/internal/platform/logger"
	perr "pvcreek/internal/platform/errors"
)

const (
	defaultRetries   = 3
	defaultRetryBase = 500 * time.Millisecond
	maxRetryInterval = 30 * time.Second
)

// Fetcher opens a remote dump by canonical name
type Fetcher interface {
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// HTTPFetcher fetches dumps over HTTP with retry
type HTTPFetcher struct {
	Client    *http.Client
	BaseURL   string
	Retries   uint64
	RetryBase time.Duration
}

// FetchOption configures an HTTPFetcher
type FetchOption func(*HTTPFetcher)

// WithClient replaces the HTTP client
func WithClient(c *http.Client) FetchOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.Client = c
		}
	}
}

// WithRetry sets the retry budget and first backoff interval
func WithRetry(retries uint64, base time.Duration) FetchOption {
	return func(f *HTTPFetcher) {
		f.Retries = retries
		if base > 0 {
			f.RetryBase = base
		}
	}
}

// NewHTTPFetcher builds a fetcher rooted at base; empty base means DefaultBaseURL
// timeout zero means no client timeout
func NewHTTPFetcher(base string, timeout time.Duration, opts ...FetchOption) *HTTPFetcher {
	if base == "" {
		base = DefaultBaseURL
	}
	f := &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		BaseURL:   base,
		Retries:   defaultRetries,
		RetryBase: defaultRetryBase,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch returns the raw (still compressed) body of name
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := f.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// get returns a 200 response; the caller owns resp.Body
func (f *HTTPFetcher) get(ctx context.Context, name string) (*http.Response, error) {
	url, err := URLFor(f.BaseURL, name)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	attempt := 0
	op := func() error {
		attempt++
		r, err := f.once(ctx, url)
		if err != nil {
			if !perr.Retryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.RetryBase
	eb.MaxInterval = maxRetryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, f.Retries), ctx)

	notify := func(err error, wait time.Duration) {
		logger.C(ctx).Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("dumps: fetch failed, retrying")
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// once issues a single GET and classifies the outcome
func (f *HTTPFetcher) once(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "dumps: bad request for %s", url)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dumps: GET %s", url)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	msg := fmt.Sprintf("dumps: unexpected status %d for %s", resp.StatusCode, url)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, perr.New(perr.ErrorCodeNotFound, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, perr.New(perr.ErrorCodeTooManyRequests, msg)
	case resp.StatusCode >= 500:
		return nil, perr.New(perr.ErrorCodeUnavailable, msg)
	default:
		return nil, perr.New(perr.ErrorCodeUpstream, msg)
	}
}
