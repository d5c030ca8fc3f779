package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Server HTTP服务器结构体
type Server struct {
	httpServer *http.Server
}

// New 创建HTTP服务器实例
func New(address string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start runs the HTTP server. It returns nil after Stop.
func (s *Server) Start() error {
	return ignoreClosed(s.httpServer.ListenAndServe())
}

// Serve accepts connections on lis. It returns nil after Stop.
func (s *Server) Serve(lis net.Listener) error {
	return ignoreClosed(s.httpServer.Serve(lis))
}

// Stop 停止HTTP服务器
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
