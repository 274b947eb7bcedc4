package state

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kk-code-lab/arangr/internal/logging"
	"github.com/kk-code-lab/arangr/internal/preview"
)

// DefaultPreviewWorkers bounds concurrent preview jobs when no worker count
// is configured.
const DefaultPreviewWorkers = 2

// PreviewLoader resolves previews off the UI loop.
type PreviewLoader interface {
	Start(req PreviewLoadRequest)
	Cancel(generation uint64)
}

// PreviewLoadRequest describes the preview to build. Callback is not invoked
// for cancelled jobs.
type PreviewLoadRequest struct {
	Request  preview.Request
	Callback func(*preview.Result)
}

// NewAsyncPreviewLoader constructs a loader that runs at most workers
// resolutions at a time. Queued jobs that are cancelled never start.
func NewAsyncPreviewLoader(resolver *preview.Resolver, workers int) PreviewLoader {
	if workers <= 0 {
		workers = DefaultPreviewWorkers
	}
	return &asyncPreviewLoader{
		resolver: resolver,
		sem:      semaphore.NewWeighted(int64(workers)),
		jobs:     make(map[uint64]context.CancelFunc),
		log:      logging.Get("loader"),
	}
}

type asyncPreviewLoader struct {
	resolver *preview.Resolver
	sem      *semaphore.Weighted
	log      *logging.Logger

	mu   sync.Mutex
	jobs map[uint64]context.CancelFunc
}

func (l *asyncPreviewLoader) Start(req PreviewLoadRequest) {
	gen := req.Request.Generation
	if gen == 0 || req.Request.Path == "" || req.Callback == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	l.jobs[gen] = cancel
	l.mu.Unlock()

	go func() {
		defer func() {
			l.mu.Lock()
			delete(l.jobs, gen)
			l.mu.Unlock()
			cancel()
		}()

		if err := l.sem.Acquire(ctx, 1); err != nil {
			l.log.Debug("preview cancelled before start", "path", req.Request.Path, "generation", gen)
			return
		}
		res := l.resolver.Resolve(ctx, req.Request)
		l.sem.Release(1)

		select {
		case <-ctx.Done():
			l.log.Debug("preview cancelled", "path", req.Request.Path, "generation", gen)
			return
		default:
		}

		req.Callback(res)
	}()
}

func (l *asyncPreviewLoader) Cancel(generation uint64) {
	l.mu.Lock()
	if cancel, ok := l.jobs[generation]; ok {
		cancel()
		delete(l.jobs, generation)
	}
	l.mu.Unlock()
}
