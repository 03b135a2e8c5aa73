package usecase

import (
	"context"
	"time"

	"github.com/AzielCF/az-adlib/domains/health"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 3 * time.Second

type healthService struct {
	database health.Pinger
	valkey   health.Pinger
}

// NewHealthService probes the cache store and, when configured, Valkey.
// Pass a nil valkey pinger when Valkey is disabled.
func NewHealthService(database health.Pinger, valkey health.Pinger) health.IHealthUsecase {
	return &healthService{database: database, valkey: valkey}
}

func (s *healthService) Check(ctx context.Context) health.Report {
	report := health.Report{Healthy: true}

	report.Components = append(report.Components, s.probe(ctx, health.ComponentDatabase, s.database))
	if s.valkey != nil {
		report.Components = append(report.Components, s.probe(ctx, health.ComponentValkey, s.valkey))
	} else {
		report.Components = append(report.Components, health.HealthRecord{
			Component:   health.ComponentValkey,
			Status:      health.StatusDisabled,
			LastChecked: time.Now().UTC(),
		})
	}

	for _, c := range report.Components {
		if c.Status == health.StatusError {
			report.Healthy = false
		}
	}
	return report
}

func (s *healthService) probe(ctx context.Context, component health.Component, p health.Pinger) health.HealthRecord {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	rec := health.HealthRecord{Component: component, Status: health.StatusOk}
	if p == nil {
		rec.Status = health.StatusError
		rec.LastMessage = "not configured"
	} else if err := p.Ping(ctx); err != nil {
		rec.Status = health.StatusError
		rec.LastMessage = err.Error()
		logrus.WithError(err).Warnf("[Health] %s unreachable", component)
	}
	rec.LatencyMs = time.Since(start).Milliseconds()
	rec.LastChecked = time.Now().UTC()
	return rec
}
