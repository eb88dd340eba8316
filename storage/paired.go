package storage

import (
	"errors"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	writebackQueueLen   = 42
	writebackAttempts   = 5
	writebackFirstPause = 250 * time.Millisecond
)

// Paired implements Store wrapping a pair of stores, one fast, one slow.
// Gets are served from the fast store if possible, otherwise from the slow
// store, copying the value into the fast store for next time. Puts land in
// the fast store and are copied to the slow store in the background.
//
// Put never waits on the slow store: when the write-back queue is full the
// copy is dropped, and a copy that keeps failing is given up after a few
// attempts. The fast store always has the value, so nothing a Get could see
// is lost, only the slow store's replica.
//
// A typical pairing is a DiskStore in front of S3, so that source images are
// downloaded once per edge node.
type Paired struct {
	fast Store
	slow Store

	wbc     chan pair
	pause   time.Duration
	dropped *int64
}

type pair struct {
	key   string
	value []byte
}

func NewPaired(fast, slow Store) Paired {
	p := Paired{
		fast:    fast,
		slow:    slow,
		wbc:     make(chan pair, writebackQueueLen),
		pause:   writebackFirstPause,
		dropped: new(int64),
	}
	// Exits only when the process is terminated.
	go p.writeback()
	return p
}

func (s Paired) Get(key string) (value []byte, err error) {
	value, err = s.fast.Get(key)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrNotFound) {
		return
	}
	value, err = s.slow.Get(key)
	if err != nil {
		return nil, err
	}
	logger := log.WithField("key", key)
	if ferr := s.fast.Put(key, value); ferr != nil {
		logger.WithField("err", ferr).Warn("Could not propagate from slow to fast")
	} else {
		logger.Debug("Propagated from slow to fast")
	}
	return value, nil
}

func (s Paired) Put(key string, value []byte) (err error) {
	if err = s.fast.Put(key, value); err != nil {
		return err
	}
	select {
	case s.wbc <- pair{key: key, value: dup(value)}:
	default:
		atomic.AddInt64(s.dropped, 1)
		log.WithField("key", key).Warn("Write-back queue full, not propagating to slow store")
	}
	return nil
}

// Dropped returns how many pairs were never copied to the slow store, either
// because the queue was full or because every attempt failed.
func (s Paired) Dropped() int64 {
	return atomic.LoadInt64(s.dropped)
}

func (s Paired) writeback() {
	for kv := range s.wbc {
		if !s.writeback1(kv.key, kv.value) {
			atomic.AddInt64(s.dropped, 1)
		}
	}
}

func (s Paired) writeback1(key string, value []byte) bool {
	logger := log.WithField("key", key)
	pause := s.pause
	for attempt := 1; attempt <= writebackAttempts; attempt++ {
		err := s.slow.Put(key, value)
		if err == nil {
			logger.Debug("Propagated from fast to slow")
			return true
		}
		logger.WithFields(log.Fields{
			"err":     err,
			"attempt": attempt,
		}).Warn("Could not propagate from fast to slow")
		if attempt < writebackAttempts {
			time.Sleep(pause)
			pause *= 2
		}
	}
	logger.Error("Giving up propagating from fast to slow")
	return false
}
