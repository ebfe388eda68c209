package worker

import (
	"log/slog"
	"sync"

	"github.com/baharkarakas/moviecatalog/internal/metrics"
)

type task func()

// Pool runs submitted tasks on a fixed number of goroutines. Submit never
// blocks the request path: when the queue is full it refuses the task and the
// caller decides whether to run it inline.
type Pool struct {
	wg      sync.WaitGroup
	jobs    chan task
	mu      sync.RWMutex
	stopped bool
}

const queueSize = 1024

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, queueSize)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.AuditQueueDepth.Dec()
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker task panic", "err", rec)
		}
	}()
	job()
}

// Submit queues f and reports whether it was accepted.
func (p *Pool) Submit(f task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	// counted before the send so a fast worker cannot take the gauge below zero
	metrics.AuditQueueDepth.Inc()
	select {
	case p.jobs <- f:
		return true
	default:
		metrics.AuditQueueDepth.Dec()
		slog.Warn("worker queue full, refusing task")
		return false
	}
}

// Stop drains the queue and waits for running tasks.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
