package health

import "context"

// HealthPinger is implemented by store adapters that can cheaply verify the
// backing database is reachable. HealthPing returns nil when the probe
// succeeds.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
