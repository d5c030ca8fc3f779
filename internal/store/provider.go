package store

import (
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// ProviderSet 存储Provider集合
var ProviderSet = wire.NewSet(
	ProvideStore,
)

// Factory 存储工厂函数类型
type Factory func(cfg *config.Config, log zerolog.Logger) (Store, error)

// factories 存储工厂映射
var factories = make(map[string]Factory)

// RegisterFactory 注册存储工厂
func RegisterFactory(storeType string, factory Factory) {
	factories[storeType] = factory
}

// ProvideStore 提供存储实例
func ProvideStore(cfg *config.Config, log zerolog.Logger) (Store, func(), error) {
	factory, ok := factories[cfg.Store.Type]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}

	s, err := factory(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Str("store", cfg.Store.Type).Msg("failed to close store")
		}
	}
	return s, cleanup, nil
}
