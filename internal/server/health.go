package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Probe results.
const (
	probeUp       = "up"
	probeDown     = "down"
	probeDisabled = "disabled"
)

const readinessTimeout = 3 * time.Second

var errProbeDisabled = errors.New("dependency not configured")

// probe checks one dependency. A failing critical probe makes the service
// unready; any other failure only degrades it.
type probe struct {
	name     string
	critical bool
	check    func(ctx context.Context) error
}

type probeResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) probes() []probe {
	return []probe{
		{name: "database", critical: true, check: func(ctx context.Context) error {
			sqlDB, err := s.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		// Redis only backs the token cache and rate limits.
		{name: "redis", check: func(ctx context.Context) error {
			if s.redis == nil {
				return errProbeDisabled
			}
			return s.redis.Ping(ctx).Err()
		}},
	}
}

// LivenessCheck reports that the process is serving requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": probeUp, "time": time.Now().UTC()})
}

// ReadinessCheck runs the dependency probes concurrently.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	probes := s.probes()
	results := make([]probeResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Go(func() {
			start := time.Now()
			err := p.check(ctx)
			results[i] = probeResult{Status: probeUp, LatencyMS: time.Since(start).Milliseconds()}
			switch {
			case errors.Is(err, errProbeDisabled):
				results[i] = probeResult{Status: probeDisabled}
			case err != nil:
				results[i].Status = probeDown
				results[i].Error = err.Error()
			}
		})
	}
	wg.Wait()

	code, overall := fiber.StatusOK, "ready"
	checks := make(fiber.Map, len(probes))
	for i, p := range probes {
		checks[p.name] = results[i]
		if results[i].Status != probeDown {
			continue
		}
		if p.critical {
			code, overall = fiber.StatusServiceUnavailable, "unready"
		} else if code == fiber.StatusOK {
			overall = "degraded"
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"service": s.config.ServiceName,
		"status":  overall,
		"checks":  checks,
		"time":    time.Now().UTC(),
	})
}
