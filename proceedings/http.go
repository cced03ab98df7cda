package proceedings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

var (
	UserAgent = "Citation_Proceedings_Bot/1.0"
	Timeout   = 30 * time.Second

	// MaxRetries is how many times a failed request is retried.  Client
	// errors other than 429 are never retried.
	MaxRetries           uint64 = 3
	RetryInitialInterval        = 2 * time.Second
)

// Fetcher retrieves proceedings listing pages.
type Fetcher struct {
	BaseURL    string
	UserAgent  string
	Client     *http.Client
	MaxRetries uint64
}

func NewFetcher() *Fetcher {
	f := &Fetcher{
		BaseURL:    BaseURL,
		UserAgent:  UserAgent,
		Client:     newClient(),
		MaxRetries: MaxRetries,
	}
	return f
}

// Get issues a GET request for u and returns the response body, which the
// caller must close.  Non-2xx responses are reported as errors.  Transport
// errors, 5xx and 429 responses are retried with exponential backoff.
func (f *Fetcher) Get(ctx context.Context, u string) (io.ReadCloser, error) {
	var (
		body    io.ReadCloser
		attempt int
	)
	op := func() error {
		attempt++
		req, err := f.newRequest(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		log.WithField("url", u).WithField("attempt", attempt).Debug("Fetching page")
		resp, err := f.client().Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			err = fmt.Errorf("fetching %v: unexpected status %v", u, resp.Status)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		body = resp.Body
		return nil
	}
	notify := func(err error, d time.Duration) {
		log.WithField("url", u).Warnf("Request failed: %s; waiting for %s before retrying", err, d)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), f.MaxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	return b
}

func (f *Fetcher) newRequest(ctx context.Context, method string, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	return req, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return newClient()
	}
	return f.Client
}

func newClient() *http.Client {
	c := &http.Client{
		Timeout: Timeout,
	}
	return c
}
