package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hako/durafmt"
)

// ErrTimeout marks a fetch that ran out of its connect or read budget.
var ErrTimeout = errors.New("upstream timeout")

// Fetcher returns the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Error is a transport failure talking to an upstream page.
type Error struct {
	URL        string
	StatusCode int // 0 when no response was received
	Status     string
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bad status from %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("could not get response from %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTimeout) match timeouts of any origin.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// HTTPFetcher fetches pages over HTTP with separate connect and read budgets.
// It never retries; that is left to the caller.
type HTTPFetcher struct {
	client  *http.Client
	options Options
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 20 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   opts.ConnectTimeout,
				ResponseHeaderTimeout: opts.ReadTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
			Timeout: opts.ConnectTimeout + opts.ReadTimeout,
		},
		options: opts,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.transportError(url, err)
	}
	defer resp.Body.Close() //nolint: errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, f.transportError(url, fmt.Errorf("could not read body: %w", err))
	}

	return body, nil
}

func (f *HTTPFetcher) transportError(url string, err error) *Error {
	if !isTimeout(err) {
		return &Error{URL: url, Err: err}
	}

	budget := durafmt.Parse(f.options.ConnectTimeout + f.options.ReadTimeout).LimitFirstN(2).String()
	return &Error{
		URL:     url,
		Timeout: true,
		Err:     fmt.Errorf("no response within %s: %w", budget, err),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
