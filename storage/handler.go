package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
)

// Handler exposes a Store over HTTP, the way RemoteStore expects it.
//
// GETs and PUTs go to "/" followed by the path-escaped key. A missing key is
// a 404 with no body. Other failures are a 500 with the error message as the
// body. Other methods, and the empty key, are a 400.
func Handler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithFields(log.Fields{
			"op":   r.Method,
			"path": r.URL.Path,
		})
		status, body := func() (int, []byte) {
			key, err := url.PathUnescape(r.URL.EscapedPath())
			if err != nil || len(key) < 2 {
				return http.StatusBadRequest, []byte(fmt.Sprintf("%q: not a valid path, expecting a key", r.URL.Path))
			}
			key = key[1:]
			logger = logger.WithField("key", key)
			switch r.Method {
			case http.MethodGet:
				value, err := store.Get(key)
				if errors.Is(err, ErrNotFound) {
					logger.WithField("err", err).Debug("Not found")
					return http.StatusNotFound, nil
				}
				if err != nil {
					logger.WithField("err", err).Error()
					return http.StatusInternalServerError, []byte(fmt.Sprintf("%q: %v", key, err))
				}
				logger.Debug("Success")
				return http.StatusOK, value
			case http.MethodPut:
				value, err := io.ReadAll(r.Body)
				if err != nil {
					logger.WithField("err", err).Error()
					return http.StatusInternalServerError, []byte(fmt.Sprintf("%q: %v", key, err))
				}
				if err := store.Put(key, value); err != nil {
					logger.WithField("err", err).Error()
					return http.StatusInternalServerError, []byte(fmt.Sprintf("%q: %v", key, err))
				}
				logger.Debug("Success")
				return http.StatusOK, nil
			default:
				logger.Warn("Bad request")
				return http.StatusBadRequest, []byte(fmt.Sprintf("%q: invalid method, expecting GET or PUT", r.Method))
			}
		}()
		w.WriteHeader(status)
		if body != nil {
			if _, err := w.Write(body); err != nil {
				logger.WithField("err", err).Error("Failed writing response")
			}
		}
	})
}
