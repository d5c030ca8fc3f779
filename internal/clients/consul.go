package clients

import (
	"fmt"

	"github.com/hashicorp/consul/api"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// Consul creates a Consul API client.
func Consul(cfg config.ConsulConfig) (*api.Client, error) {
	consulConfig := api.DefaultConfig()
	if cfg.Address != "" {
		consulConfig.Address = cfg.Address
	}
	if cfg.Scheme != "" {
		consulConfig.Scheme = cfg.Scheme
	}
	consulConfig.Token = cfg.Token
	consulConfig.Datacenter = cfg.Datacenter

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return client, nil
}
