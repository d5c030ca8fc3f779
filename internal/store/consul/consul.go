// Package consul stores the snapshot record as a JSON object under one
// Consul KV key, using the pair's ModifyIndex as the record version.
package consul

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/clients"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

func init() {
	store.RegisterFactory("consul", func(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
		client, err := clients.Consul(cfg.Consul)
		if err != nil {
			return nil, err
		}
		return New(client, Key(cfg.Namespace, cfg.Store.Name)), nil
	})
}

// Key returns the KV key for a record.
func Key(namespace, name string) string {
	return namespace + "/" + name
}

// Store Consul KV存储实现
type Store struct {
	kv  *api.KV
	key string
}

// New creates a store on key.
func New(client *api.Client, key string) *Store {
	return &Store{kv: client.KV(), key: key}
}

// Read 读取记录
func (s *Store) Read(ctx context.Context) (*store.Record, error) {
	pair, _, err := s.kv.Get(s.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("consul: get %s: %w", s.key, err)
	}
	if pair == nil {
		return nil, store.ErrNotFound
	}

	fields, err := store.DecodeFields(pair.Value)
	if err != nil {
		return nil, fmt.Errorf("consul: %s: %w", s.key, err)
	}
	return &store.Record{
		Fields:  fields,
		Version: strconv.FormatUint(pair.ModifyIndex, 10),
	}, nil
}

// Write stores the record. A CAS index of 0 only succeeds if the key does not exist.
func (s *Store) Write(ctx context.Context, rec *store.Record) error {
	var index uint64
	if rec.Version != "" {
		var err error
		index, err = strconv.ParseUint(rec.Version, 10, 64)
		if err != nil {
			return fmt.Errorf("consul: invalid version %q: %w", rec.Version, err)
		}
	}

	value, err := store.EncodeFields(rec.Fields)
	if err != nil {
		return err
	}

	pair := &api.KVPair{Key: s.key, Value: value, ModifyIndex: index}
	ok, _, err := s.kv.CAS(pair, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return fmt.Errorf("consul: cas %s: %w", s.key, err)
	}
	if !ok {
		return store.ErrConflict
	}
	return nil
}

// Close is a no-op; the api client has no close.
func (s *Store) Close() error {
	return nil
}

var _ store.Store = (*Store)(nil)
