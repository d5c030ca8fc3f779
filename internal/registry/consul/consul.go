// Package consul enumerates members from the Consul catalog. A selector is
// a service name, optionally followed by ":tag".
package consul

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/clients"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/registry"
)

func init() {
	// 注册Consul工厂到注册中心
	registry.RegisterFactory("consul", func(cfg *config.Config, log zerolog.Logger) (registry.Registry, error) {
		client, err := clients.Consul(cfg.Consul)
		if err != nil {
			return nil, err
		}
		return NewRegistry(client), nil
	})
}

// Registry Consul注册中心实现
type Registry struct {
	client *api.Client
}

// NewRegistry 创建Consul注册中心
func NewRegistry(client *api.Client) *Registry {
	return &Registry{client: client}
}

// Members lists the service instances. The namespace is passed as the Consul namespace
// (Enterprise) unless it is "default".
func (r *Registry) Members(ctx context.Context, namespace, selector string) ([]registry.Member, error) {
	service, tag := ParseSelector(selector)
	if service == "" {
		return nil, fmt.Errorf("consul: empty service in selector %q", selector)
	}

	q := (&api.QueryOptions{}).WithContext(ctx)
	if namespace != "" && namespace != "default" {
		q.Namespace = namespace
	}

	entries, _, err := r.client.Health().Service(service, tag, false, q)
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %s: %w", service, err)
	}

	members := make([]registry.Member, 0, len(entries))
	for _, entry := range entries {
		members = append(members, registry.Member{
			Address: address(entry),
			Phase:   phase(entry.Checks.AggregatedStatus()),
		})
	}
	return members, nil
}

// ParseSelector splits "service:tag".
func ParseSelector(selector string) (service, tag string) {
	service, tag, _ = strings.Cut(strings.TrimSpace(selector), ":")
	return service, tag
}

// address prefers the service address and falls back to the node's.
func address(entry *api.ServiceEntry) string {
	if entry.Service != nil && entry.Service.Address != "" {
		return entry.Service.Address
	}
	if entry.Node != nil {
		return entry.Node.Address
	}
	return ""
}

func phase(status string) registry.Phase {
	switch status {
	case api.HealthPassing, api.HealthWarning:
		return registry.PhaseRunning
	case api.HealthCritical:
		return registry.PhaseFailed
	case api.HealthMaint:
		return registry.PhasePending
	default:
		return registry.PhaseUnknown
	}
}

var _ registry.Registry = (*Registry)(nil)
