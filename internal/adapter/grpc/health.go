package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PublicMethods need no credentials
var PublicMethods = []string{
	healthpb.Health_Check_FullMethodName,
}

// RegisterHealth registers the standard health service on s and reports the
// patrimony service as serving. Callers flip it with Shutdown on exit.
func RegisterHealth(s grpc.ServiceRegistrar) *health.Server {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}
