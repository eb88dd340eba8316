// Package server answers touch icon requests over HTTP.
//
// A request path is parsed and validated as an icon size; malformed paths get
// a 400 and out of bounds sizes a 403, both with the error message as body.
// Valid requests are answered from the response cache, keyed by the full
// request URL, or by resizing the source image to a PNG that is then cached.
package server // import "github.com/nicolagi/touchicon/server"

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/nicolagi/touchicon/cache"
	"github.com/nicolagi/touchicon/render"
	"github.com/nicolagi/touchicon/source"
)

// CacheControl is set on freshly rendered icons.
const CacheControl = "s-maxage=10"

type Option func(*options)

type options struct {
	address   string
	source    source.Source
	cache     cache.Cache
	transform render.Transform
}

func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithSource(value source.Source) Option {
	return func(o *options) {
		o.source = value
	}
}

func WithCache(value cache.Cache) Option {
	return func(o *options) {
		o.cache = value
	}
}

func WithTransform(value render.Transform) Option {
	return func(o *options) {
		o.transform = value
	}
}

type Server struct {
	opts options
	ln   net.Listener
	srv  *http.Server
}

// New returns a server with the embedded source image and no response
// cache, unless configured otherwise.
func New(opts ...Option) *Server {
	s := &Server{}
	s.opts.address = ":8080"
	for _, o := range opts {
		o(&s.opts)
	}
	if s.opts.source == nil {
		s.opts.source = source.NewEmbedded()
	}
	if s.opts.cache == nil {
		s.opts.cache = cache.Nop{}
	}
	if s.opts.transform == nil {
		s.opts.transform = render.New()
	}
	s.srv = &http.Server{Handler: s}
	return s
}

func (s *Server) Listen() (addr string, err error) {
	s.ln, err = net.Listen("tcp", s.opts.address)
	if err != nil {
		return
	}
	addr = s.ln.Addr().String()
	return
}

// Serve serves requests on the listener set up by Listen. It returns nil
// once Shutdown is called.
func (s *Server) Serve() error {
	err := s.srv.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests,
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)
	logger.Info("Request")
	response := s.respond(r, logger)
	header := w.Header()
	for name, values := range response.Header {
		header[name] = append([]string(nil), values...)
	}
	w.WriteHeader(response.Status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(response.Body); err != nil {
		logger.WithField("err", err).Error("Failed writing response")
	}
}
