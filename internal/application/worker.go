package application

import "context"

// Worker is a long-running background loop, such as the sync scheduler.
// Start blocks until ctx is canceled and returns only after in-flight work
// has finished.
type Worker interface {
	Start(ctx context.Context)
}
