//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	"github.com/heytom-labs/heytom-healthroute/internal/probe"
	"github.com/heytom-labs/heytom-healthroute/internal/prober"
	"github.com/heytom-labs/heytom-healthroute/internal/registry"
	grpcserver "github.com/heytom-labs/heytom-healthroute/internal/server/grpc"
	httpserver "github.com/heytom-labs/heytom-healthroute/internal/server/http"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
	"github.com/heytom-labs/heytom-healthroute/internal/telemetry"
)

// InitializeApp 初始化应用程序
func InitializeApp(path config.Path) (*App, func(), error) {
	wire.Build(
		config.ProviderSet,
		logging.ProviderSet,
		registry.ProviderSet,
		store.ProviderSet,
		probe.ProviderSet,
		telemetry.ProviderSet,
		prober.ProviderSet,
		grpcserver.ProberProviderSet,
		httpserver.ProviderSet,
		wire.Bind(new(prober.HealthChecker), new(*probe.Checker)),
		wire.Bind(new(prober.StatusReporter), new(*grpcserver.Server)),
		wire.Bind(new(httpserver.SnapshotSource), new(*prober.Prober)),
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
