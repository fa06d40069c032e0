package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	schemas  SchemaCounter
	executor Pinger
}

// New creates a Service. executor can be nil.
func New(schemas SchemaCounter, executor Pinger) *Service {
	return &Service{schemas: schemas, executor: executor}
}

// Check runs health checks against all components. Without registered types
// nothing can compile, so the service is unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.schemas == nil || s.schemas.Len() == 0 {
		return Report{Status: Unhealthy, Checks: map[string]CheckResult{"schemas": CheckError}}
	}
	checks["schemas"] = CheckOK

	if s.executor != nil {
		if err := s.executor.Ping(ctx); err != nil {
			checks["executor"] = CheckError
		} else {
			checks["executor"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
