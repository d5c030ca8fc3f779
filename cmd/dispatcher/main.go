package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/consul"     // Register Consul KV store
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/etcd"       // Register etcd store
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/kubernetes" // Register ConfigMap store
	_ "github.com/heytom-labs/heytom-healthroute/internal/store/redis"      // Register Redis store
)

func main() {
	configPath := flag.String("config", "", "config file path (default: search ./configs and .)")
	flag.Parse()

	if err := run(config.Path(*configPath)); err != nil {
		log.Fatalf("dispatcher: %v", err)
	}
}

func run(path config.Path) error {
	app, cleanup, err := InitializeApp(path)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		app.Log.Info().Str("addr", app.Config.Server.GRPCPort).Msg("grpc health server starting")
		if err := app.GRPCServer.Start(); err != nil {
			app.Log.Fatal().Err(err).Msg("grpc health server failed")
		}
	}()

	err = app.Pool.Run(ctx)
	app.GRPCServer.Stop()
	return err
}
