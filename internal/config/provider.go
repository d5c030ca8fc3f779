package config

import (
	"github.com/google/wire"
)

// ProviderSet 配置Provider集合
var ProviderSet = wire.NewSet(
	ProvideConfig,
)

// ProvideConfig 提供配置实例
func ProvideConfig(path Path) (*Config, error) {
	return LoadConfig(string(path))
}
