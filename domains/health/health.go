package health

import (
	"context"
	"time"
)

type Component string

const (
	ComponentDatabase Component = "database"
	ComponentValkey   Component = "valkey"
)

type Status string

const (
	StatusOk       Status = "OK"
	StatusError    Status = "ERROR"
	StatusDisabled Status = "DISABLED"
)

type HealthRecord struct {
	Component   Component `json:"component"`
	Status      Status    `json:"status"`
	LastMessage string    `json:"last_message,omitempty"`
	LatencyMs   int64     `json:"latency_ms"`
	LastChecked time.Time `json:"last_checked"`
}

type Report struct {
	Healthy    bool           `json:"healthy"`
	Components []HealthRecord `json:"components"`
}

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type IHealthUsecase interface {
	Check(ctx context.Context) Report
}
