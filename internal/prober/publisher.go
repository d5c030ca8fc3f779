package prober

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

// Publisher writes snapshots into one field of the shared record.
type Publisher struct {
	store    store.Store
	field    string
	attempts int
	log      zerolog.Logger
}

// ProvidePublisher 提供发布器
func ProvidePublisher(cfg *config.Config, s store.Store, log zerolog.Logger) *Publisher {
	return NewPublisher(s, cfg.Store.Field, cfg.Store.MaxRetries, log)
}

// NewPublisher creates a publisher. attempts bounds the read-modify-write
// retries on version conflict.
func NewPublisher(s store.Store, field string, attempts int, log zerolog.Logger) *Publisher {
	return &Publisher{
		store:    s,
		field:    field,
		attempts: attempts,
		log:      logging.Component(log, "publisher"),
	}
}

// Publish replaces the snapshot field, leaving other fields untouched. The
// record is created if it does not exist.
func (p *Publisher) Publish(ctx context.Context, snap snapshot.Snapshot) error {
	value, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}

	err = store.Update(ctx, p.store, p.attempts, func(fields map[string]string) {
		fields[p.field] = value
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.field, err)
	}

	p.log.Info().Int("healthy", snap.Total()).Str("field", p.field).Msg("updated shared record with healthy members")
	return nil
}
