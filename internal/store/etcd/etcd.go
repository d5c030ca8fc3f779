// Package etcd stores the snapshot record as a JSON object under one etcd
// key. The key's ModRevision is the record version and writes are guarded
// by a transaction comparing it.
package etcd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/heytom-labs/heytom-healthroute/internal/clients"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

func init() {
	store.RegisterFactory("etcd", func(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
		client, err := clients.Etcd(cfg.Etcd)
		if err != nil {
			return nil, err
		}
		log.Debug().Strs("endpoints", cfg.Etcd.Endpoints).Msg("etcd store connected")
		return New(client, client, Key(cfg.Namespace, cfg.Store.Name)), nil
	})
}

// Key returns the etcd key for a record: /{namespace}/{name}.
func Key(namespace, name string) string {
	return "/" + namespace + "/" + name
}

// Store etcd存储实现
type Store struct {
	kv     clientv3.KV
	closer io.Closer
	key    string
}

// New creates a store on key. closer may be nil when the caller owns the client.
func New(kv clientv3.KV, closer io.Closer, key string) *Store {
	return &Store{kv: kv, closer: closer, key: key}
}

// Read 读取记录
func (s *Store) Read(ctx context.Context) (*store.Record, error) {
	resp, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("etcd: get %s: %w", s.key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, store.ErrNotFound
	}

	kv := resp.Kvs[0]
	fields, err := store.DecodeFields(kv.Value)
	if err != nil {
		return nil, fmt.Errorf("etcd: %s: %w", s.key, err)
	}
	return &store.Record{Fields: fields, Version: strconv.FormatInt(kv.ModRevision, 10)}, nil
}

// Write 写入记录
func (s *Store) Write(ctx context.Context, rec *store.Record) error {
	cmp, err := s.guard(rec.Version)
	if err != nil {
		return err
	}

	value, err := store.EncodeFields(rec.Fields)
	if err != nil {
		return err
	}

	resp, err := s.kv.Txn(ctx).
		If(cmp).
		Then(clientv3.OpPut(s.key, string(value))).
		Commit()
	if err != nil {
		return fmt.Errorf("etcd: txn %s: %w", s.key, err)
	}
	if !resp.Succeeded {
		return store.ErrConflict
	}
	return nil
}

// guard builds the transaction condition for a version token. An empty token
// requires the key to be absent.
func (s *Store) guard(version string) (clientv3.Cmp, error) {
	if version == "" {
		return clientv3.Compare(clientv3.CreateRevision(s.key), "=", 0), nil
	}
	rev, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return clientv3.Cmp{}, fmt.Errorf("etcd: invalid version %q: %w", version, err)
	}
	return clientv3.Compare(clientv3.ModRevision(s.key), "=", rev), nil
}

// Close 关闭客户端
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

var _ store.Store = (*Store)(nil)
