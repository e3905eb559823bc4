package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing means the venue index has not been created yet.
	CheckMissing CheckResult = "missing"
)

// Component names used as Report.Checks keys.
const (
	ComponentDatabase   = "database"
	ComponentCompletion = "completion"
	ComponentEmbedding  = "embedding"
	ComponentIndex      = "index"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// IndexReport describes the venue index backing retrieval.
type IndexReport struct {
	Status    CheckResult
	Name      string
	Documents int64
	Embedding string
}

// ProviderReport describes the completion provider.
type ProviderReport struct {
	Status CheckResult
	Model  string
}

// Service coordinates health checks.
type Service struct {
	db         DBPinger
	completion ModelProvider
	embedding  ModelProvider
	index      IndexInspector
}

// New creates a Service. Any checker except db can be nil.
func New(db DBPinger, completion, embedding ModelProvider, index IndexInspector) *Service {
	return &Service{db: db, completion: completion, embedding: embedding, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentDatabase] = result(s.db.Ping(ctx))

	if s.completion != nil {
		checks[ComponentCompletion] = result(s.completion.HealthCheck(ctx))
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}
	if s.index != nil {
		checks[ComponentIndex] = s.indexState(ctx)
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

// Index reports whether the venue index exists and how many venues it holds.
func (s *Service) Index(ctx context.Context) IndexReport {
	var rep IndexReport
	if s.embedding != nil {
		rep.Embedding = s.embedding.Model()
	}
	if s.index == nil {
		rep.Status = CheckMissing
		return rep
	}
	rep.Name = s.index.IndexName()
	rep.Status = s.indexState(ctx)
	if rep.Status != CheckOK {
		return rep
	}
	n, err := s.index.Count(ctx)
	if err != nil {
		rep.Status = CheckError
		return rep
	}
	rep.Documents = n
	return rep
}

// Completion reports on the completion provider.
func (s *Service) Completion(ctx context.Context) ProviderReport {
	if s.completion == nil {
		return ProviderReport{Status: CheckMissing}
	}
	return ProviderReport{
		Status: result(s.completion.HealthCheck(ctx)),
		Model:  s.completion.Model(),
	}
}

func (s *Service) indexState(ctx context.Context) CheckResult {
	ok, err := s.index.Exists(ctx)
	switch {
	case err != nil:
		return CheckError
	case !ok:
		return CheckMissing
	default:
		return CheckOK
	}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
