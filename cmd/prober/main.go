package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	_ "github.com/heytom-labs/heytom-healthroute/internal/registry/consul"     // Register Consul registry
	_ "github.com/heytom-labs/heytom-healthroute/internal/registry/kubernetes" // Register Kubernetes registry
	_ "github.com/heytom-labs/heytom-healthroute/internal/registry/static"     // Register static registry
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/consul"        // Register Consul KV store
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/etcd"          // Register etcd store
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/kubernetes"    // Register ConfigMap store
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/redis"         // Register Redis store
)

func main() {
	configPath := flag.String("config", "", "config file path (default: search ./configs and .)")
	flag.Parse()

	if err := run(config.Path(*configPath)); err != nil {
		log.Fatalf("prober: %v", err)
	}
}

func run(path config.Path) error {
	// Use Wire to initialize app
	app, cleanup, err := InitializeApp(path)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		app.Log.Info().Str("addr", app.Config.Server.HTTPPort).Msg("status server starting")
		if err := app.HTTPServer.Start(); err != nil {
			app.Log.Fatal().Err(err).Msg("status server failed")
		}
	}()
	go func() {
		app.Log.Info().Str("addr", app.Config.Server.GRPCPort).Msg("grpc health server starting")
		if err := app.GRPCServer.Start(); err != nil {
			app.Log.Fatal().Err(err).Msg("grpc health server failed")
		}
	}()

	runErr := app.Prober.Run(ctx)

	app.Log.Info().Msg("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.HTTPServer.Stop(shutdownCtx); err != nil {
		app.Log.Warn().Err(err).Msg("status server shutdown error")
	}
	app.GRPCServer.Stop()

	return runErr
}
