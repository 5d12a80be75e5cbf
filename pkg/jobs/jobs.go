// Package jobs implements the background job engine: two worker pools
// (CPU-bound and network-bound), FIFO scheduling per pool, cooperative
// cancellation at progress checkpoints and progress delivery decoupled
// from job execution through a single dispatcher.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/acerion/slavgps-core/pkg/monitoring"
	"github.com/acerion/slavgps-core/pkg/tracing"
)

// ErrCancelled is returned by a job function that stopped at a
// cancellation checkpoint.
var ErrCancelled = errors.New("job cancelled")

// ErrShuttingDown is returned by Spawn after Shutdown began.
var ErrShuttingDown = errors.New("job engine is shutting down")

// PoolKind selects which worker pool runs a job.
type PoolKind int

const (
	// CpuBound jobs run on as many workers as there are cores.
	CpuBound PoolKind = iota
	// NetworkBound jobs run on a larger, configurable pool.
	NetworkBound
)

// String returns the pool name, used as a metric label.
func (p PoolKind) String() string {
	switch p {
	case CpuBound:
		return "cpu"
	case NetworkBound:
		return "network"
	default:
		return "unknown"
	}
}

// Status is the final outcome of a job.
type Status int

const (
	StatusOk Status = iota
	StatusCancelled
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusCancelled:
		return "cancelled"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Func is the body of a background job. It must call j.Progress between
// work units and return ErrCancelled when Progress reports a
// cancellation request.
type Func func(j *Job) error

// Job is one unit of background work with stable identity, a published
// progress value and a cooperative cancel flag.
type Job struct {
	id          string
	description string
	nItems      int
	pool        PoolKind

	fn      Func
	cleanup func()

	percent atomic.Int32
	cancel  atomic.Bool

	engine *Engine
}

// ID returns the job's stable identity.
func (j *Job) ID() string { return j.id }

// Description returns the human-readable job description.
func (j *Job) Description() string { return j.description }

// Pool returns the pool the job was spawned into.
func (j *Job) Pool() PoolKind { return j.pool }

// Percent returns the last published progress value.
func (j *Job) Percent() int { return int(j.percent.Load()) }

// Cancel requests cooperative cancellation; the job observes it at its
// next progress checkpoint.
func (j *Job) Cancel() {
	j.cancel.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (j *Job) Cancelled() bool {
	return j.cancel.Load()
}

// Progress publishes the job's progress and reports whether to
// continue. Workers call it between work units; a false return means a
// cancel request was observed and the job must stop and return
// ErrCancelled. The published value is monotonic.
func (j *Job) Progress(current, total int) bool {
	if total > 0 {
		pct := int32(current * 100 / total)
		if pct > 100 {
			pct = 100
		}
		// Keep the published value monotonic for observers.
		for {
			old := j.percent.Load()
			if pct <= old || j.percent.CompareAndSwap(old, pct) {
				break
			}
		}
		j.engine.markDirty(j)
	}
	return !j.cancel.Load()
}

// Observer receives job lifecycle notifications. All methods are called
// from the engine's single dispatcher goroutine.
type Observer interface {
	OnJobAdded(id, description string)
	OnJobProgress(id string, percent int)
	OnJobFinished(id string, status Status, err error)
}

type lifecycleEvent struct {
	added  bool
	job    *Job
	status Status
	err    error
}

// Engine owns the two pools and the dispatcher. Create it with
// NewEngine and stop it with Shutdown.
type Engine struct {
	cpu *pool
	net *pool

	mu        sync.Mutex
	observers []Observer
	live      map[string]*Job
	dirty     map[string]*Job
	events    []lifecycleEvent

	wake     chan struct{}
	stopDisp chan struct{}
	dispDone chan struct{}

	closed atomic.Bool
	logger *slog.Logger
}

// DefaultNetworkWorkers is the network pool size when the settings
// store carries no override.
const DefaultNetworkWorkers = 8

// dispatchInterval paces observer delivery; jobs may publish progress
// far faster than any view wants to repaint.
const dispatchInterval = 100 * time.Millisecond

// NewEngine starts the worker pools and the dispatcher. cpuWorkers and
// netWorkers fall back to the number of cores and
// DefaultNetworkWorkers when non-positive.
func NewEngine(cpuWorkers, netWorkers int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cpuWorkers <= 0 {
		cpuWorkers = runtime.NumCPU()
	}
	if netWorkers <= 0 {
		netWorkers = DefaultNetworkWorkers
	}

	e := &Engine{
		live:     make(map[string]*Job),
		dirty:    make(map[string]*Job),
		wake:     make(chan struct{}, 1),
		stopDisp: make(chan struct{}),
		dispDone: make(chan struct{}),
		logger:   logger.With("component", "jobs"),
	}
	e.cpu = newPool(e, CpuBound, cpuWorkers)
	e.net = newPool(e, NetworkBound, netWorkers)
	go e.dispatch()
	return e
}

// AddObserver registers an observer for job lifecycle notifications.
func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// RemoveObserver unregisters an observer.
func (e *Engine) RemoveObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.observers {
		if cur == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// Spawn enqueues a job on the given pool. The cleanup function, if any,
// runs after the job body regardless of outcome.
func (e *Engine) Spawn(pool PoolKind, description string, nItems int, fn Func, cleanup func()) (*Job, error) {
	if e.closed.Load() {
		return nil, ErrShuttingDown
	}

	j := &Job{
		id:          uuid.NewString(),
		description: description,
		nItems:      nItems,
		pool:        pool,
		fn:          fn,
		cleanup:     cleanup,
		engine:      e,
	}

	e.mu.Lock()
	e.live[j.id] = j
	e.events = append(e.events, lifecycleEvent{added: true, job: j})
	e.mu.Unlock()
	e.poke()

	monitoring.JobsSpawned.WithLabelValues(pool.String()).Inc()
	e.poolFor(pool).enqueue(j)
	e.logger.Debug("job spawned", "id", j.id, "pool", pool.String(), "description", description)
	return j, nil
}

func (e *Engine) poolFor(p PoolKind) *pool {
	if p == NetworkBound {
		return e.net
	}
	return e.cpu
}

// Jobs returns the currently live jobs (queued or running).
func (e *Engine) Jobs() []*Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Job, 0, len(e.live))
	for _, j := range e.live {
		out = append(out, j)
	}
	return out
}

// CancelAll requests cancellation of every live job.
func (e *Engine) CancelAll() {
	for _, j := range e.Jobs() {
		j.Cancel()
	}
}

// Shutdown stops accepting jobs, cancels everything in flight and
// waits until every worker (and so every cleanup) has returned, or the
// context expires.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.closed.Store(true)
	e.CancelAll()
	e.cpu.close()
	e.net.close()

	done := make(chan struct{})
	go func() {
		e.cpu.wait()
		e.net.wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	close(e.stopDisp)
	<-e.dispDone
	return err
}

// runJob executes one job on a worker goroutine.
func (e *Engine) runJob(j *Job) {
	_, span := tracing.StartJob(context.Background(), j.id, j.pool.String(), j.description)

	start := time.Now()
	var err error
	if j.Cancelled() {
		// Cancelled while still queued; never run the body.
		err = ErrCancelled
	} else {
		err = j.fn(j)
	}
	if j.cleanup != nil {
		j.cleanup()
	}

	status := StatusOk
	var failure error
	switch {
	case errors.Is(err, ErrCancelled):
		status = StatusCancelled
	case err != nil:
		status = StatusError
		failure = err
		monitoring.RecordError("jobs", j.pool.String())
		e.logger.Warn("job failed", "id", j.id, "description", j.description, "error", err)
	}
	tracing.EndJob(span, status.String(), failure)
	monitoring.RecordJobFinished(j.pool.String(), status.String(), time.Since(start))

	e.mu.Lock()
	delete(e.live, j.id)
	delete(e.dirty, j.id)
	e.events = append(e.events, lifecycleEvent{job: j, status: status, err: err})
	e.mu.Unlock()
	e.poke()
}

func (e *Engine) markDirty(j *Job) {
	e.mu.Lock()
	e.dirty[j.id] = j
	e.mu.Unlock()
	e.poke()
}

func (e *Engine) poke() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// dispatch is the single goroutine delivering observer notifications.
// Jobs only publish values; this loop reads them on its own cadence,
// so observers never run on a worker goroutine. Delivery is
// rate-limited so a chatty job cannot flood the observers.
func (e *Engine) dispatch() {
	defer close(e.dispDone)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-e.stopDisp
		cancel()
	}()

	limiter := rate.NewLimiter(rate.Every(dispatchInterval), 1)
	for {
		select {
		case <-e.stopDisp:
			e.deliver()
			return
		case <-e.wake:
		}
		if err := limiter.Wait(ctx); err != nil {
			e.deliver()
			return
		}
		e.deliver()
	}
}

func (e *Engine) deliver() {
	e.mu.Lock()
	events := e.events
	e.events = nil
	dirty := e.dirty
	e.dirty = make(map[string]*Job)
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	for _, ev := range events {
		for _, o := range observers {
			if ev.added {
				o.OnJobAdded(ev.job.id, ev.job.description)
			} else {
				o.OnJobFinished(ev.job.id, ev.status, ev.err)
			}
		}
	}
	for id, j := range dirty {
		pct := j.Percent()
		for _, o := range observers {
			o.OnJobProgress(id, pct)
		}
	}
}
