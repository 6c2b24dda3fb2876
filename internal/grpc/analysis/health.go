package analysis

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"phishguard/pkg/logger"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// RegisterHealthServer registers the standard health service and keeps its
// status in sync with checks until ctx is done
func RegisterHealthServer(ctx context.Context, grpcServer grpc.ServiceRegistrar, interval time.Duration, log *logger.Logger, checks ...HealthCheck) *health.Server {
	log = log.WithComponent("grpc-health")
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	update := func() {
		servingStatus := grpc_health_v1.HealthCheckResponse_SERVING
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		for _, check := range checks {
			if err := check(checkCtx); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				servingStatus = grpc_health_v1.HealthCheckResponse_NOT_SERVING
				break
			}
		}
		healthServer.SetServingStatus("", servingStatus)
		healthServer.SetServingStatus(ServiceName, servingStatus)
	}
	update()

	if interval > 0 && len(checks) > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					healthServer.Shutdown()
					return
				case <-ticker.C:
					update()
				}
			}
		}()
	}

	return healthServer
}
