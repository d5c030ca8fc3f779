// Package probe checks member health over HTTP.
package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/logging"
)

// ProviderSet 健康检查Provider集合
var ProviderSet = wire.NewSet(
	ProvideChecker,
)

// Checker 健康检查器
type Checker struct {
	client *http.Client
	port   int
	path   string
	log    zerolog.Logger
}

// ProvideChecker 提供健康检查器
func ProvideChecker(cfg *config.Config, log zerolog.Logger) *Checker {
	return NewChecker(cfg.Probe, log)
}

// NewChecker creates a checker. Each check is bounded by cfg.Timeout.
func NewChecker(cfg config.ProbeConfig, log zerolog.Logger) *Checker {
	path := cfg.Path
	if path == "" {
		path = "/health"
	}
	return &Checker{
		client: &http.Client{
			Timeout: cfg.Timeout,
			// only the first response counts
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		port:   cfg.Port,
		path:   path,
		log:    logging.Component(log, "probe"),
	}
}

// URL returns the health endpoint of a member.
func (c *Checker) URL(address string) string {
	return "http://" + net.JoinHostPort(address, strconv.Itoa(c.port)) + c.path
}

// Check issues one GET to the member's health endpoint and reports whether it
// answered exactly 200. Failures are logged and reported as unhealthy, never
// returned. There are no retries.
func (c *Checker) Check(ctx context.Context, address string) bool {
	url := c.URL(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warn().Err(err).Str(logging.FieldAddress, address).Msg("invalid health check request")
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str(logging.FieldAddress, address).Msg("health check failed")
		return false
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Str(logging.FieldAddress, address).
			Int("status", resp.StatusCode).
			Msg("health check returned non-200")
		return false
	}

	c.log.Debug().Str(logging.FieldAddress, address).Msg("health check passed")
	return true
}
