// Package redis stores the snapshot record as a Redis hash. A reserved
// _rev field carries the record version; writes run under WATCH so a
// concurrent change aborts the transaction.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/clients"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

// RevField is the hash field holding the record version. It is never
// exposed as a record field.
const RevField = "_rev"

func init() {
	store.RegisterFactory("redis", func(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
		log.Debug().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis store configured")
		return New(clients.Redis(cfg.Redis), Key(cfg.Namespace, cfg.Store.Name)), nil
	})
}

// Key returns the hash key for a record.
func Key(namespace, name string) string {
	return namespace + ":" + name
}

// Store Redis存储实现
type Store struct {
	rdb *goredis.Client
	key string
}

// New creates a store on hash key.
func New(rdb *goredis.Client, key string) *Store {
	return &Store{rdb: rdb, key: key}
}

// Read 读取记录
func (s *Store) Read(ctx context.Context) (*store.Record, error) {
	values, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: hgetall %s: %w", s.key, err)
	}
	if len(values) == 0 {
		return nil, store.ErrNotFound
	}

	version := values[RevField]
	if version == "" {
		// written by something other than this store
		version = "0"
	}
	delete(values, RevField)
	return &store.Record{Fields: values, Version: version}, nil
}

// Write 写入记录
func (s *Store) Write(ctx context.Context, rec *store.Record) error {
	txf := func(tx *goredis.Tx) error {
		current, err := currentVersion(ctx, tx, s.key)
		if err != nil {
			return err
		}
		if current != rec.Version {
			return store.ErrConflict
		}
		next, err := nextVersion(current)
		if err != nil {
			return err
		}

		values := make(map[string]interface{}, len(rec.Fields)+1)
		for k, v := range rec.Fields {
			values[k] = v
		}
		values[RevField] = next

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, s.key)
			pipe.HSet(ctx, s.key, values)
			return nil
		})
		return err
	}

	err := s.rdb.Watch(ctx, txf, s.key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, goredis.TxFailedErr), errors.Is(err, store.ErrConflict):
		return store.ErrConflict
	default:
		return fmt.Errorf("redis: write %s: %w", s.key, err)
	}
}

// Close 关闭客户端
func (s *Store) Close() error {
	return s.rdb.Close()
}

// currentVersion reads the version under WATCH. A missing key has the empty
// version.
func currentVersion(ctx context.Context, tx *goredis.Tx, key string) (string, error) {
	n, err := tx.Exists(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("exists: %w", err)
	}
	if n == 0 {
		return "", nil
	}
	rev, err := tx.HGet(ctx, key, RevField).Result()
	if errors.Is(err, goredis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("hget %s: %w", RevField, err)
	}
	return rev, nil
}

func nextVersion(current string) (string, error) {
	if current == "" {
		return "1", nil
	}
	n, err := strconv.ParseUint(current, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", current, err)
	}
	return strconv.FormatUint(n+1, 10), nil
}

var _ store.Store = (*Store)(nil)
