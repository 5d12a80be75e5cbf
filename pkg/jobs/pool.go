package jobs

import (
	"sync"

	"github.com/acerion/slavgps-core/pkg/monitoring"
)

// pool is one FIFO worker pool. Workers block on the queue condition
// until a job arrives or the pool closes.
type pool struct {
	kind PoolKind

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*Job
	closed bool

	wg sync.WaitGroup
}

func newPool(e *Engine, kind PoolKind, workers int) *pool {
	p := &pool{kind: kind}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(e)
	}
	return p
}

func (p *pool) enqueue(j *Job) {
	p.mu.Lock()
	p.queue = append(p.queue, j)
	depth := len(p.queue)
	p.mu.Unlock()
	monitoring.JobQueueDepth.WithLabelValues(p.kind.String()).Set(float64(depth))
	p.cond.Signal()
}

// pop blocks until a job is available or the pool closes.
func (p *pool) pop() (*Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	j := p.queue[0]
	p.queue = p.queue[1:]
	monitoring.JobQueueDepth.WithLabelValues(p.kind.String()).Set(float64(len(p.queue)))
	return j, true
}

func (p *pool) worker(e *Engine) {
	defer p.wg.Done()
	for {
		j, ok := p.pop()
		if !ok {
			return
		}
		e.runJob(j)
	}
}

// close wakes every worker; queued jobs still drain (they observe their
// cancel flag immediately and finish as cancelled).
func (p *pool) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *pool) wait() {
	p.wg.Wait()
}
