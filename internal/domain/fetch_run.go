package domain

import "time"

// FetchRun is the outcome of one fetcher inside one synchronization cycle.
type FetchRun struct {
	ID         string
	Exchange   Exchange
	Status     FetchStatus
	Records    int
	Error      *string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r FetchRun) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
