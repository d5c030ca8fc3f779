package main

import (
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/prober"
	grpcserver "github.com/heytom-labs/heytom-healthroute/internal/server/grpc"
	httpserver "github.com/heytom-labs/heytom-healthroute/internal/server/http"
)

// App Application structure
type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Prober     *prober.Prober
	HTTPServer *httpserver.Server
	GRPCServer *grpcserver.Server
}
