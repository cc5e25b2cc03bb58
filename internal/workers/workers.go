package workers

import "context"

// Workers aggregates background workers so the application can start them
// with one call.
type Workers struct {
	workers []Worker
}

// New builds a [Workers] aggregate from the given workers.
func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker in its own goroutine. Workers stop when ctx is
// cancelled.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		go worker.Run(ctx)
	}
}
