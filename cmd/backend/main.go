// Command backend is the sample service instance the prober checks and the
// dispatcher sends traffic to.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	httpserver "github.com/heytom-labs/heytom-healthroute/internal/server/http"
)

func main() {
	addr := flag.String("addr", defaultAddr(), "listen address")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logging.New(config.LogConfig{Level: *level, Format: "json"}, os.Stdout)
	srv := httpserver.New(*addr, httpserver.BackendRouter())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("addr", *addr).Msg("app running")
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// defaultAddr listens on $PORT when set, 3000 otherwise.
func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":3000"
}
