// Package prober runs the probe cycle: enumerate each service group, keep
// running members, health check them and publish the healthy addresses.
package prober

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	"github.com/heytom-labs/heytom-healthroute/internal/registry"
	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
	"github.com/heytom-labs/heytom-healthroute/internal/telemetry"
)

// HealthComponent is the gRPC health service name the prober reports under.
const HealthComponent = "prober"

// ProviderSet 探测器Provider集合
var ProviderSet = wire.NewSet(
	ProvidePublisher,
	ProvideProber,
)

// HealthChecker reports whether one member is healthy.
type HealthChecker interface {
	Check(ctx context.Context, address string) bool
}

// StatusReporter receives the prober's serving state.
type StatusReporter interface {
	SetServing(component string, serving bool)
}

// MemberHealth is the probe result for one member.
type MemberHealth struct {
	Address string
	Healthy bool
}

// Prober 健康探测器
type Prober struct {
	namespace string
	groups    []config.GroupConfig
	interval  time.Duration
	workers   int

	registry  registry.Registry
	checker   HealthChecker
	publisher *Publisher
	metrics   *telemetry.Metrics
	status    StatusReporter
	log       zerolog.Logger

	mu            sync.RWMutex
	last          snapshot.Snapshot
	lastPublished time.Time
}

// ProvideProber 提供探测器
func ProvideProber(
	cfg *config.Config,
	reg registry.Registry,
	checker HealthChecker,
	publisher *Publisher,
	metrics *telemetry.Metrics,
	status StatusReporter,
	log zerolog.Logger,
) *Prober {
	return &Prober{
		namespace: cfg.Namespace,
		groups:    cfg.Groups,
		interval:  cfg.Probe.Interval,
		workers:   cfg.Probe.Workers,
		registry:  reg,
		checker:   checker,
		publisher: publisher,
		metrics:   metrics,
		status:    status,
		log:       logging.Component(log, "prober"),
	}
}

// Run executes cycle, publish, sleep until ctx is cancelled. Cancellation
// stops the loop between cycles and returns nil; a publish failure stops it
// and is returned.
func (p *Prober) Run(ctx context.Context) error {
	p.log.Info().
		Int("groups", len(p.groups)).
		Dur("interval", p.interval).
		Int("workers", p.workers).
		Msg("prober started")

	for {
		snap := p.RunCycle(ctx)
		if ctx.Err() != nil {
			// a cycle cut short by cancellation is incomplete, do not publish it
			return nil
		}

		err := p.publisher.Publish(ctx, snap)
		p.metrics.RecordPublish(ctx, err)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.status.SetServing(HealthComponent, false)
			return fmt.Errorf("prober: %w", err)
		}
		p.setLast(snap)
		p.status.SetServing(HealthComponent, true)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.log.Info().Msg("prober stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunCycle probes every configured group once and returns the healthy
// addresses. Every group gets a key; an enumeration failure yields an empty
// list for that group.
func (p *Prober) RunCycle(ctx context.Context) snapshot.Snapshot {
	snap := make(snapshot.Snapshot, len(p.groups))

	for _, g := range p.groups {
		log := p.log.With().Str(logging.FieldService, g.Name).Logger()

		members, err := p.registry.Members(ctx, p.namespace, g.Selector)
		if err != nil {
			log.Error().Err(err).Str("selector", g.Selector).Msg("failed to enumerate members")
			snap[g.Name] = []string{}
			continue
		}

		healthy := make([]string, 0, len(members))
		for _, mh := range p.probeMembers(ctx, g.Name, running(members)) {
			if mh.Healthy {
				healthy = append(healthy, mh.Address)
			}
		}
		snap[g.Name] = healthy

		log.Debug().Int("members", len(members)).Int("healthy", len(healthy)).Msg("group probed")
	}

	p.metrics.RecordCycle(ctx, snap)
	return snap
}

// probeMembers checks every address and returns the results in input order.
// With more than one worker the checks run concurrently, at most workers at
// a time.
func (p *Prober) probeMembers(ctx context.Context, service string, addrs []string) []MemberHealth {
	results := make([]MemberHealth, len(addrs))

	check := func(i int) {
		healthy := p.checker.Check(ctx, addrs[i])
		p.metrics.RecordProbe(ctx, service, healthy)
		results[i] = MemberHealth{Address: addrs[i], Healthy: healthy}
	}

	if p.workers <= 1 || len(addrs) <= 1 {
		for i := range addrs {
			check(i)
		}
		return results
	}

	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i := range addrs {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			check(i)
		}(i)
	}
	wg.Wait()
	return results
}

// Last returns the last published snapshot and when it was published. The
// snapshot is nil before the first successful publish.
func (p *Prober) Last() (snapshot.Snapshot, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil, time.Time{}
	}
	return p.last.Clone(), p.lastPublished
}

func (p *Prober) setLast(snap snapshot.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = snap.Clone()
	p.lastPublished = time.Now()
}

// running returns the addresses of running members, in order.
func running(members []registry.Member) []string {
	addrs := make([]string, 0, len(members))
	for _, m := range members {
		if m.Running() && m.Address != "" {
			addrs = append(addrs, m.Address)
		}
	}
	return addrs
}
