package main

import (
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/dispatch"
	grpcserver "github.com/heytom-labs/heytom-healthroute/internal/server/grpc"
)

// App Application structure
type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Pool       *dispatch.Pool
	GRPCServer *grpcserver.Server
}
