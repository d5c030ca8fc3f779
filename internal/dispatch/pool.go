package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/heytom-labs/heytom-healthroute/internal/cache"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
	"github.com/heytom-labs/heytom-healthroute/internal/telemetry"
)

// HealthComponent is the gRPC health service name the dispatcher reports under.
const HealthComponent = "dispatcher"

// ErrNoTarget is returned when every tier is empty. It is not a failure; the
// request is skipped.
var ErrNoTarget = errors.New("no healthy target in any tier")

// StatusReporter receives the dispatcher's serving state.
type StatusReporter interface {
	SetServing(component string, serving bool)
}

// Pool runs traffic workers. Each worker owns its own cache and dispatcher;
// the workers share only the store client and a rate limiter.
type Pool struct {
	workers  int
	tiers    []string
	port     int
	path     string
	field    string
	interval time.Duration

	store   store.Store
	client  *http.Client
	limiter *rate.Limiter
	metrics *telemetry.Metrics
	status  StatusReporter
	log     zerolog.Logger
}

// ProvidePool 提供流量工作池
func ProvidePool(
	cfg *config.Config,
	s store.Store,
	metrics *telemetry.Metrics,
	status StatusReporter,
	log zerolog.Logger,
) *Pool {
	path := cfg.Dispatch.Path
	if path == "" {
		path = "/"
	}
	return &Pool{
		workers:  cfg.Dispatch.Workers,
		tiers:    cfg.GroupNames(),
		port:     cfg.Dispatch.Port,
		path:     path,
		field:    cfg.Store.Field,
		interval: cfg.Dispatch.RefreshInterval,
		store:    s,
		client:   &http.Client{Timeout: cfg.Dispatch.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.Dispatch.Rate), cfg.Dispatch.Burst),
		metrics:  metrics,
		status:   status,
		log:      logging.Component(log, "dispatch"),
	}
}

// Run starts the workers and blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info().
		Int("workers", p.workers).
		Strs("tiers", p.tiers).
		Float64("rate", float64(p.limiter.Limit())).
		Msg("dispatch pool started")

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		w := p.NewWorker()
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	wg.Wait()

	p.log.Info().Msg("dispatch pool stopped")
	return nil
}

// Worker is one traffic generator.
type Worker struct {
	id         string
	pool       *Pool
	cache      *cache.Cache
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewWorker creates a worker with an empty cache and fresh cursors.
func (p *Pool) NewWorker() *Worker {
	id := uuid.NewString()
	log := p.log.With().Str(logging.FieldWorker, id).Logger()
	return &Worker{
		id:         id,
		pool:       p,
		cache:      cache.New(p.store, p.field, p.interval, log, cache.WithMetrics(p.metrics)),
		dispatcher: NewDispatcher(p.tiers),
		log:        log,
	}
}

// ID returns the worker id.
func (w *Worker) ID() string {
	return w.id
}

func (w *Worker) run(ctx context.Context) {
	for {
		if err := w.pool.limiter.Wait(ctx); err != nil {
			return
		}
		_, _ = w.DispatchOnce(ctx)
	}
}

// DispatchOnce picks a target from the cached snapshot and sends one
// request to it. It returns ErrNoTarget when every tier is empty.
func (w *Worker) DispatchOnce(ctx context.Context) (Target, error) {
	p := w.pool

	target, ok := w.dispatcher.Pick(w.cache.Snapshot(ctx))
	if !ok {
		w.log.Warn().Strs("tiers", p.tiers).Msg("no healthy members available, skipping request")
		p.metrics.RecordDispatch(ctx, "", nil)
		p.status.SetServing(HealthComponent, false)
		return Target{}, ErrNoTarget
	}
	p.status.SetServing(HealthComponent, true)

	url := p.URL(target.Address)
	w.log.Info().
		Str(logging.FieldService, target.Service).
		Str("url", url).
		Msg("sending traffic")

	err := w.send(ctx, url)
	p.metrics.RecordDispatch(ctx, target.Service, err)
	if err != nil {
		w.log.Warn().Err(err).Str(logging.FieldService, target.Service).Str("url", url).Msg("request failed")
	}
	return target, err
}

func (w *Worker) send(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := w.pool.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// URL returns the traffic URL for an address.
func (p *Pool) URL(address string) string {
	return "http://" + net.JoinHostPort(address, strconv.Itoa(p.port)) + p.path
}
