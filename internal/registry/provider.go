package registry

import (
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// ProviderSet 注册中心Provider集合
var ProviderSet = wire.NewSet(
	ProvideRegistry,
)

// Factory 注册中心工厂函数类型
type Factory func(cfg *config.Config, log zerolog.Logger) (Registry, error)

// factories 注册中心工厂映射
var factories = make(map[string]Factory)

// RegisterFactory 注册注册中心工厂
func RegisterFactory(registryType string, factory Factory) {
	factories[registryType] = factory
}

// ProvideRegistry 提供注册中心实例
func ProvideRegistry(cfg *config.Config, log zerolog.Logger) (Registry, error) {
	factory, ok := factories[cfg.Registry.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported registry type: %s", cfg.Registry.Type)
	}
	return factory(cfg, log)
}
