package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type options struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

type Option func(*options)

func WithHTTPClient(value *http.Client) Option {
	return func(o *options) {
		o.client = value
	}
}

// WithTimeout bounds each fetch, including time spent waiting on the rate
// limiter.
func WithTimeout(value time.Duration) Option {
	return func(o *options) {
		o.timeout = value
	}
}

// WithRateLimit throttles fetches to perSecond, allowing bursts of burst.
// A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// RemoteURL fetches the source image over HTTP. The image format is taken
// from the response Content-Type.
type RemoteURL struct {
	url  string
	opts options
}

func NewRemoteURL(url string, opts ...Option) *RemoteURL {
	s := &RemoteURL{url: url}
	s.opts.client = http.DefaultClient
	s.opts.timeout = 10 * time.Second
	for _, o := range opts {
		o(&s.opts)
	}
	return s
}

func (s *RemoteURL) Fetch(ctx context.Context) (Image, error) {
	if s.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.timeout)
		defer cancel()
	}
	if s.opts.limiter != nil {
		if err := s.opts.limiter.Wait(ctx); err != nil {
			return Image{}, fmt.Errorf("%w: %s: throttled: %w", ErrFetch, s.url, err)
		}
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	response, err := s.opts.client.Do(request)
	if response != nil && response.Body != nil {
		defer func() {
			if err := response.Body.Close(); err != nil {
				log.WithFields(log.Fields{
					"url": s.url,
					"err": err,
				}).Warn("Could not close response body")
			}
		}()
	}
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return Image{}, fmt.Errorf("%w: %s: status %d", ErrFetch, s.url, response.StatusCode)
	}
	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		return Image{}, fmt.Errorf("%w: %s: could not get content-type response header", ErrFetch, s.url)
	}
	format, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %w", ErrFetch, s.url, err)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %w", ErrFetch, s.url, err)
	}
	log.WithFields(log.Fields{
		"url":    s.url,
		"format": format,
		"size":   len(data),
	}).Debug("Fetched source image")
	return Image{Data: data, Format: format}, nil
}
