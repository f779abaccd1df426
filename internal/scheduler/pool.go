// Package scheduler provides the bounded worker pool and retry-with-backoff
// helpers used to bound in-flight downloads and parses, generalized from the
// teacher's pkg/context.WorkerPool/Semaphore/RetryWithContext.
package scheduler

import (
	"context"
	"runtime"
	"sync"
)

// Pool runs tasks with at most Size concurrently in flight. The first task
// failure cancels the pool's context: running tasks see the cancellation and
// later Submit calls return without running their task. Callers collect
// errors via Wait.
type Pool struct {
	sem     chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	errs    []error
	ctx     context.Context
	cancel  context.CancelCauseFunc
	onError func(error)
}

// NewPool creates a Pool bounded to size concurrent tasks. size <= 0 defaults
// to GOMAXPROCS, matching the installer's "upper bound on in-flight downloads
// is the scheduler's worker count."
func NewPool(ctx context.Context, size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	innerCtx, cancel := context.WithCancelCause(ctx)

	return &Pool{
		sem:    make(chan struct{}, size),
		ctx:    innerCtx,
		cancel: cancel,
	}
}

// Context returns the pool's context, canceled as soon as any submitted task
// returns an error, implementing "a failure in any task cancels the build."
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Submit blocks until a worker slot is free (or the pool's context is done),
// then runs fn in a new goroutine. Submit itself never blocks on fn completing.
func (p *Pool) Submit(fn func(ctx context.Context) error) {
	select {
	case p.sem <- struct{}{}:
	case <-p.ctx.Done():
		return
	}

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()

		if err := fn(p.ctx); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
			p.cancel(err)
		}
	}()
}

// Wait blocks until every submitted task has returned, then returns every
// error collected, in the order tasks finished (surviving tasks are always
// joined; nothing is suppressed here, the first failure's cancellation is
// what stops new work from starting).
func (p *Pool) Wait() []error {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.errs
}
