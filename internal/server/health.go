package server

import (
	"context"

	"github.com/liyue/tracemap/internal/dataservice"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// DataServiceHealth verifies upstream data service reachability as part of
// health checks.
type DataServiceHealth struct {
	Client dataservice.Client
}

// Probe implements the HealthService interface.
func (s DataServiceHealth) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Health(ctx)
}
