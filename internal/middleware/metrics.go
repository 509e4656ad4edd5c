package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed redis commands, excluding cache misses.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hotorflop_redis_errors_total",
	Help: "Total number of Redis command errors by command",
}, []string{"command"})

var prom *fiberprometheus.FiberPrometheus

// InitMetrics creates the HTTP metrics collector once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	if prom == nil {
		prom = fiberprometheus.NewWith(serviceName, "hotorflop", "http")
	}
	return prom
}

// MetricsMiddleware records request counts and latency, skipping the scrape endpoint.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := p.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return handler(c)
	}
}
