package worker

import "time"

// Summary is the outcome of one run.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Dispatched     int
	DispatchFailed int

	Completed      int
	CreationFailed int
	TimedOut       int

	Replicated        int
	ReplicationFailed int
	Unresolved        int

	Pruned      int
	PruneFailed int
}

// Failures adds up every item that did not go through.
func (s Summary) Failures() int {
	return s.DispatchFailed + s.CreationFailed + s.TimedOut +
		s.ReplicationFailed + s.Unresolved + s.PruneFailed
}

func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// KV renders the summary as logger key/value pairs.
func (s Summary) KV() []any {
	return []any{
		"dispatched", s.Dispatched,
		"dispatchFailed", s.DispatchFailed,
		"completed", s.Completed,
		"creationFailed", s.CreationFailed,
		"timedOut", s.TimedOut,
		"replicated", s.Replicated,
		"replicationFailed", s.ReplicationFailed,
		"unresolved", s.Unresolved,
		"pruned", s.Pruned,
		"pruneFailed", s.PruneFailed,
		"duration", s.Duration().String(),
	}
}
