package grpc

import (
	"github.com/google/wire"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// Health service names reported by the binaries.
const (
	ComponentProber     = "prober"
	ComponentDispatcher = "dispatcher"
)

// ProberProviderSet 探测进程的gRPC服务器Provider集合
var ProberProviderSet = wire.NewSet(
	ProvideProberServer,
)

// DispatcherProviderSet 分发进程的gRPC服务器Provider集合
var DispatcherProviderSet = wire.NewSet(
	ProvideDispatcherServer,
)

// ProvideProberServer 提供只注册prober组件的gRPC服务器
func ProvideProberServer(cfg *config.Config) *Server {
	return New(cfg.Server.GRPCPort, ComponentProber)
}

// ProvideDispatcherServer 提供只注册dispatcher组件的gRPC服务器
func ProvideDispatcherServer(cfg *config.Config) *Server {
	return New(cfg.Server.GRPCPort, ComponentDispatcher)
}
