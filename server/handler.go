package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nicolagi/touchicon/cache"
	"github.com/nicolagi/touchicon/icon"
	"github.com/nicolagi/touchicon/render"
	log "github.com/sirupsen/logrus"
)

func (s *Server) respond(r *http.Request, logger *log.Entry) *cache.Response {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logger.Warn("Bad method")
		response := text(http.StatusMethodNotAllowed, r.Method+": invalid method, expecting GET or HEAD")
		response.Header.Set("Allow", "GET, HEAD")
		return response
	}

	i, err := icon.Parse(strings.TrimPrefix(r.URL.Path, "/"))
	if err != nil {
		logger.WithField("err", err).Debug("Bad path")
		return text(http.StatusBadRequest, err.Error())
	}
	if err := i.Validate(); err != nil {
		logger.WithFields(log.Fields{
			"err":  err,
			"icon": i,
		}).Debug("Bad size")
		return text(http.StatusForbidden, err.Error())
	}

	key := requestURL(r)
	logger = logger.WithFields(log.Fields{
		"key":  key,
		"icon": i,
	})
	cached, err := s.opts.cache.Get(key)
	if err == nil {
		logger.Debug("Cache hit")
		return cached
	}
	if errors.Is(err, cache.ErrMiss) {
		logger.Debug("Cache miss")
	} else {
		logger.WithField("err", err).Warn("Could not read cache")
	}

	img, err := s.opts.source.Fetch(r.Context())
	if err != nil {
		logger.WithField("err", err).Error("Could not fetch source image")
		return text(http.StatusBadGateway, err.Error())
	}
	body, err := s.opts.transform.Resize(img, int(i.Width), int(i.Height))
	if err != nil {
		logger.WithField("err", err).Error("Could not render icon")
		if errors.Is(err, render.ErrUnknownFormat) || errors.Is(err, render.ErrDecode) {
			return text(http.StatusBadGateway, err.Error())
		}
		return text(http.StatusInternalServerError, err.Error())
	}

	response := &cache.Response{
		Status: http.StatusOK,
		Header: make(http.Header),
		Body:   body,
	}
	response.Header.Set("Content-Type", "image/png")
	response.Header.Set("Content-Length", strconv.Itoa(len(body)))
	response.Header.Set("Cache-Control", CacheControl)
	if err := s.opts.cache.Put(key, response); err != nil {
		logger.WithField("err", err).Warn("Could not cache response")
	}
	return response
}

func text(status int, msg string) *cache.Response {
	response := &cache.Response{
		Status: status,
		Header: make(http.Header),
		Body:   []byte(msg),
	}
	response.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return response
}

// requestURL reconstructs the URL the client asked for, as seen before any
// TLS-terminating proxy.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func requestLogger(r *http.Request) *log.Entry {
	region := r.Header.Get("CF-Region")
	if region == "" {
		region = "unknown region"
	}
	fields := log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"remote": r.RemoteAddr,
		"region": region,
	}
	if country := r.Header.Get("CF-IPCountry"); country != "" {
		fields["country"] = country
	}
	if city := r.Header.Get("CF-IPCity"); city != "" {
		fields["city"] = city
	}
	lat, lon := r.Header.Get("CF-IPLatitude"), r.Header.Get("CF-IPLongitude")
	if lat != "" && lon != "" {
		fields["coordinates"] = lat + "," + lon
	}
	return log.WithFields(fields)
}
