// Package store abstracts the shared key-value record the prober publishes
// into and dispatchers read from.
//
// A record is addressed by (namespace, name) and holds string fields. Every
// backend exposes an opaque version token with each read; a write carrying
// that token only succeeds if the record has not changed since, and fails
// with ErrConflict otherwise. A write with an empty token creates the record
// and fails with ErrConflict if it already exists.
//
// The prober is expected to be the only writer. Conflict detection turns a
// violated single-writer assumption into retries instead of silent lost
// updates; it does not make concurrent publishers safe to run.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"
)

var (
	// ErrNotFound is returned by Read when the record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by Write when the version token is stale.
	ErrConflict = errors.New("record version conflict")
)

// Record is one stored record.
type Record struct {
	Fields  map[string]string
	Version string // opaque, backend specific; empty for a record not yet stored
}

// Store 共享存储接口
type Store interface {
	// Read returns the current record or ErrNotFound.
	Read(ctx context.Context) (*Record, error)

	// Write replaces the whole record, conditional on rec.Version.
	Write(ctx context.Context, rec *Record) error

	// Close releases the backend client.
	Close() error
}

// Update performs a conditional read-modify-write of the record, retrying up
// to attempts times when another writer got in between. A missing record is
// created from an empty field set.
func Update(ctx context.Context, s Store, attempts int, mutate func(fields map[string]string)) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := wait.Backoff{
		Steps:    attempts,
		Duration: 10 * time.Millisecond,
		Factor:   2.0,
		Jitter:   0.1,
	}

	return retry.OnError(backoff, IsConflict, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := s.Read(ctx)
		switch {
		case errors.Is(err, ErrNotFound):
			rec = &Record{}
		case err != nil:
			return fmt.Errorf("read record: %w", err)
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]string)
		}

		mutate(rec.Fields)

		if err := s.Write(ctx, rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		return nil
	})
}

// IsConflict reports whether err is a version conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
