package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine is unusable.
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

// Component names in Report.Checks.
const (
	ComponentDatabase     = "database"
	ComponentSearchModule = "search_module"
	ComponentEmbedding    = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	modules   SearchModuleProber
	embedding EmbeddingChecker
}

// New creates a Service. modules and embedding can be nil.
func New(db DBPinger, modules SearchModuleProber, embedding EmbeddingChecker) *Service {
	return &Service{db: db, modules: modules, embedding: embedding}
}

// Check runs health checks against all components. Engine failures make the report
// Unhealthy; an embedding failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentDatabase] = CheckOK
	}

	if s.modules != nil && checks[ComponentDatabase] == CheckOK {
		if ok, err := s.modules.HasSearchModule(ctx); err != nil || !ok {
			checks[ComponentSearchModule] = CheckError
			status = Unhealthy
		} else {
			checks[ComponentSearchModule] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks[ComponentEmbedding] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[ComponentEmbedding] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
