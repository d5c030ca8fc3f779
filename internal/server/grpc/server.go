package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server is the gRPC server. It serves only the standard health service, which
// reports the overall process as SERVING and each registered component
// according to the last SetServing call.
type Server struct {
	grpcServer   *grpc.Server
	healthServer *health.Server
	address      string
}

// New creates the server. Components start out NOT_SERVING.
func New(address string, components ...string) *Server {
	s := &Server{
		grpcServer:   grpc.NewServer(),
		healthServer: health.NewServer(),
		address:      address,
	}

	// 注册健康检查服务
	s.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	for _, c := range components {
		s.healthServer.SetServingStatus(c, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.healthServer)
	return s
}

// SetServing 设置组件健康状态
func (s *Server) SetServing(component string, serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus(component, status)
}

// Start 启动gRPC服务器
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop stops the server. Health watchers are told the process is going away
// before in-flight calls drain.
func (s *Server) Stop() {
	s.healthServer.Shutdown()
	s.grpcServer.GracefulStop()
}
