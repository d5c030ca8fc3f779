// Package dispatch picks traffic targets from a health snapshot with tiered
// failover and per-service round robin, and drives paced traffic workers.
package dispatch

import (
	"sync"

	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
)

// Target is a selected destination.
type Target struct {
	Service string
	Address string
}

// Dispatcher picks a target address per request. Tiers are tried in order;
// within the first tier that has healthy members, members are rotated round
// robin. Cursors belong to this instance only, so fairness holds per
// Dispatcher, not across dispatchers.
type Dispatcher struct {
	tiers []string

	mu      sync.Mutex
	cursors map[string]int
}

// NewDispatcher creates a dispatcher over tiers in priority order.
func NewDispatcher(tiers []string) *Dispatcher {
	return &Dispatcher{
		tiers:   append([]string(nil), tiers...),
		cursors: make(map[string]int, len(tiers)),
	}
}

// Pick returns the next target, or false when every tier is empty. It never
// blocks on I/O.
func (d *Dispatcher) Pick(snap snapshot.Snapshot) (Target, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, service := range d.tiers {
		addrs := snap[service]
		n := len(addrs)
		if n == 0 {
			continue
		}

		// the list may have shrunk since the cursor last advanced
		cursor := d.cursors[service] % n
		d.cursors[service] = (cursor + 1) % n
		return Target{Service: service, Address: addrs[cursor]}, true
	}
	return Target{}, false
}

// Cursor returns the current rotation index for service.
func (d *Dispatcher) Cursor(service string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursors[service]
}
