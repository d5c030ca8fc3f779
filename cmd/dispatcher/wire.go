//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/dispatch"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	grpcserver "github.com/heytom-labs/heytom-healthroute/internal/server/grpc"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
	"github.com/heytom-labs/heytom-healthroute/internal/telemetry"
)

// InitializeApp 初始化应用程序
func InitializeApp(path config.Path) (*App, func(), error) {
	wire.Build(
		config.ProviderSet,
		logging.ProviderSet,
		store.ProviderSet,
		telemetry.ProviderSet,
		dispatch.ProviderSet,
		grpcserver.DispatcherProviderSet,
		wire.Bind(new(dispatch.StatusReporter), new(*grpcserver.Server)),
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
