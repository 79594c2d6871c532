package generation

// Outcome classifies how one item ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
)

// ItemResult describes one audio file's trip through the state machine.
type ItemResult struct {
	AudioPath    string
	Outcome      Outcome
	SavedArchive string
	Err          error
}

// Counts aggregates per-item outcomes for end-of-run reporting.
type Counts struct {
	Skipped   int
	Succeeded int
	Failed    int
	TimedOut  int
}

// Total returns the number of items processed.
func (c Counts) Total() int {
	return c.Skipped + c.Succeeded + c.Failed + c.TimedOut
}

func (c *Counts) add(outcome Outcome) {
	switch outcome {
	case OutcomeSkipped:
		c.Skipped++
	case OutcomeSucceeded:
		c.Succeeded++
	case OutcomeTimedOut:
		c.TimedOut++
	default:
		c.Failed++
	}
}
