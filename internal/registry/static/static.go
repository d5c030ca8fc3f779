// Package static serves fixed members from config. Every listed address is
// reported as running, which makes it useful for local runs against the
// backend binary.
package static

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/registry"
)

func init() {
	registry.RegisterFactory("static", func(cfg *config.Config, log zerolog.Logger) (registry.Registry, error) {
		return NewRegistry(cfg.Static.Members), nil
	})
}

// Registry 静态注册中心
type Registry struct {
	members map[string][]string
}

// NewRegistry indexes the configured members by selector. Namespaces are
// ignored.
func NewRegistry(members []config.StaticMembers) *Registry {
	index := make(map[string][]string, len(members))
	for _, m := range members {
		index[m.Selector] = append(index[m.Selector], m.Addresses...)
	}
	return &Registry{members: index}
}

// Members returns the addresses listed for selector. An unknown selector has
// no members.
func (r *Registry) Members(_ context.Context, _, selector string) ([]registry.Member, error) {
	addrs := r.members[selector]
	members := make([]registry.Member, 0, len(addrs))
	for _, addr := range addrs {
		members = append(members, registry.Member{Address: addr, Phase: registry.PhaseRunning})
	}
	return members, nil
}

var _ registry.Registry = (*Registry)(nil)
