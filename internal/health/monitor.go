// Package health keeps the gRPC health status in line with the state of the
// backing services.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor pings its dependencies on an interval and flips the overall
// serving status when any of them fails.
type Monitor struct {
	server   *health.Server
	checks   map[string]Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewMonitor(server *health.Server, checks map[string]Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		server:   server,
		checks:   checks,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger,
	}
}

// CheckOnce runs every probe and updates the overall status. It reports
// whether all dependencies answered.
func (m *Monitor) CheckOnce(ctx context.Context) bool {
	healthy := true
	for name, p := range m.checks {
		pctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			healthy = false
			m.logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	return healthy
}

// Run checks until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}
