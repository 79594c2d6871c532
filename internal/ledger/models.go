package ledger

import "time"

// Status represents the lifecycle of a ledger item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusGenerated  Status = "generated"
	StatusExtracted  Status = "extracted"
	StatusSanitized  Status = "sanitized"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
)

var allStatuses = []Status{
	StatusPending,
	StatusGenerating,
	StatusGenerated,
	StatusExtracted,
	StatusSanitized,
	StatusSkipped,
	StatusFailed,
	StatusTimedOut,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is a known lifecycle value.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Item represents one unit of pipeline work persisted in SQLite.
type Item struct {
	ID           int64
	RunID        string
	SourcePath   string
	CanonicalKey string
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary aggregates item counts for one run.
type Summary struct {
	Total     int
	Pending   int
	Succeeded int
	Skipped   int
	Failed    int
	TimedOut  int
}
