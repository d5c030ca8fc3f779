package http

import (
	"github.com/google/wire"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// ProviderSet HTTP服务器Provider集合
var ProviderSet = wire.NewSet(
	ProvideStatusServer,
)

// ProvideStatusServer 提供状态HTTP服务器
func ProvideStatusServer(cfg *config.Config, source SnapshotSource) *Server {
	return New(cfg.Server.HTTPPort, StatusRouter(source))
}
