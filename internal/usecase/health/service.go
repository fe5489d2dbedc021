package health

import (
	"context"

	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Requests are still answered,
	// possibly through the keyword fallback.
	Degraded Status = "degraded"
	// Unavailable indicates an empty corpus: every request gets the
	// no-results context.
	Unavailable Status = "unavailable"
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
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	corpus    Corpus
	embedding EmbeddingChecker
	cache     CachePinger
}

// New creates a Service. embedding and cache can be nil.
func New(c Corpus, embedding EmbeddingChecker, cache CachePinger) *Service {
	return &Service{corpus: c, embedding: embedding, cache: cache}
}

// Check runs health checks against all components. An empty corpus reports
// unavailable; any other failing check, including keyword fallback, reports
// degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["corpus"] = result(s.corpus.Len() > 0)
	checks["retrieval"] = result(s.corpus.Mode() == mode.Embedding)

	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx) == nil)
	}
	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx) == nil)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["corpus"] == CheckError {
		status = Unavailable
	}

	return Report{Status: status, Checks: checks}
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
