// Package workerpool provides a bounded fan-out helper for the harness's
// parallel retrieval mode.
//
// Unlike a long-lived server pool, harness work is a fixed batch: launch every
// case, cap how many run at once, wait for all of them. Callers write results
// into per-index slots, so no result channel or locking is needed:
//
//	pool := workerpool.New(8)
//	for i := range cases {
//	    i := i
//	    pool.Go(func() { verdicts[i] = run(cases[i]) })
//	}
//	pool.Wait()
package workerpool

import "sync"

// Pool limits how many submitted tasks run concurrently.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a Pool allowing up to size concurrent tasks. size must be > 0.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Go schedules task, blocking while the pool is at capacity. Tasks never
// outlive Wait.
func (p *Pool) Go(task func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}
	go func() {
		defer func() {
			// A panicking task must not take the whole batch down; the slot
			// simply stays unfilled and the case reads as failed.
			recover() //nolint:errcheck
			<-p.sem
			p.wg.Done()
		}()
		task()
	}()
}

// Wait blocks until every scheduled task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
