package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/procesos/product-directory/pkg/logger"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName - имя сервиса в health-протоколе. Пустое имя описывает сервер целиком.
const ServiceName = "product-directory"

// Pinger - зависимость, от доступности которой зависит готовность сервиса.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter периодически проверяет зависимости и выставляет статус в health.Server.
type HealthReporter struct {
	health   *health.Server
	checks   map[string]Pinger
	interval time.Duration
	logger   logger.Logger

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewHealthReporter(health *health.Server, checks map[string]Pinger, interval time.Duration, logger logger.Logger) *HealthReporter {
	return &HealthReporter{
		health:   health,
		checks:   checks,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

func (h *HealthReporter) Start(ctx context.Context) {
	h.Check(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}

func (h *HealthReporter) Stop() {
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}

// Check выполняет все проверки один раз. Любая неудачная проверка переводит сервис в NOT_SERVING.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warnf("health check %s failed: %v", name, err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}
