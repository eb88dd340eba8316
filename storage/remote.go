package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RemoteStore implements Store. It requires to connect to a blobserver.
type RemoteStore struct {
	address string
	client  *http.Client
}

// NewRemoteStore returns a client for the blobserver at address, which may
// be a bare host:port or a full http(s) URL.
func NewRemoteStore(address string) *RemoteStore {
	return &RemoteStore{address: address, client: http.DefaultClient}
}

func (r *RemoteStore) Put(key string, value []byte) (err error) {
	request, err := http.NewRequest(http.MethodPut, r.pathFor(key), bytes.NewReader(value))
	if err != nil {
		return err
	}
	response, err := r.client.Do(request)
	if response != nil && response.Body != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}
	if err != nil {
		return err
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode != http.StatusOK {
		return errors.New(string(body))
	}
	return nil
}

func (r *RemoteStore) Get(key string) (value []byte, err error) {
	response, err := r.client.Get(r.pathFor(key))
	if response != nil && response.Body != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}
	if err != nil {
		return nil, err
	}
	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusOK {
		return nil, errors.New(string(body))
	}
	return body, nil
}

func (r *RemoteStore) pathFor(key string) string {
	base := r.address
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return strings.TrimSuffix(base, "/") + "/" + url.PathEscape(key)
}
