// Package scheduler runs batch generation over a bounded worker pool.
//
// Fetches are the only outbound calls and are throttled: a counting permit
// limits how many run at once, and a shared delay keeps them apart. The
// delay is the base delay times one plus the shared error counter, measured
// from the latest call any worker made. Failed fetches are requeued until
// their retry budget runs out.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhairuihao/anchor-src-gen/internal/fetch"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultWorkers    = 4
	DefaultMaxRetries = 3
)

// Job is one program to process.
type Job struct {
	Name string
	// Fetch loads the document. It runs while holding a permit.
	Fetch func(ctx context.Context) ([]byte, error)
	// Process consumes the document. It runs after the permit is released
	// and is not retried.
	Process func(ctx context.Context, doc []byte) error
}

// Config configures a Pool.
type Config struct {
	Workers int
	// Permits bounds concurrent fetches. Defaults to Workers.
	Permits   int
	BaseDelay time.Duration
	// MaxRetries is how many times a failed fetch is requeued. A negative
	// value disables retries.
	MaxRetries int
	Clock      Clock
	Logger     *zap.Logger
}

// Result is the outcome of one job.
type Result struct {
	Name     string
	Attempts int
	Err      error
}

// Report collects job outcomes in completion order.
type Report struct {
	Done []Result
	// Skipped jobs had no document or ran out of retries.
	Skipped []Result
	// Failed jobs fetched a document that could not be processed.
	Failed []Result
}

// Err returns the first failure, if any. Skipped jobs are not errors.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return r.Failed[0].Err
}

type task struct {
	job      Job
	attempts int
}

// Pool is a bounded worker pool. A Pool runs one batch at a time.
type Pool struct {
	cfg     Config
	log     *zap.Logger
	clock   Clock
	permits chan struct{}
	gate    *throttle
}

// New creates a pool from cfg.
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Permits <= 0 {
		cfg.Permits = cfg.Workers
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	p := &Pool{
		cfg:     cfg,
		log:     cfg.Logger,
		clock:   cfg.Clock,
		permits: make(chan struct{}, cfg.Permits),
		gate:    &throttle{base: cfg.BaseDelay},
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.clock == nil {
		p.clock = SystemClock{}
	}
	return p
}

// run is the state of one Run call.
type run struct {
	queue   *taskQueue
	mu      sync.Mutex
	pending int
	drained chan struct{}
	report  Report
}

// finish records a terminal outcome and wakes every worker once nothing
// is left to do.
func (r *run) finish(add func(*Report)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	add(&r.report)
	r.pending--
	if r.pending == 0 {
		close(r.drained)
	}
}

// Run processes jobs and blocks until every job reached a terminal outcome
// or ctx is done. The returned error is non-nil only for cancellation.
func (p *Pool) Run(ctx context.Context, jobs []Job) (*Report, error) {
	r := &run{
		queue:   newTaskQueue(len(jobs)),
		pending: len(jobs),
		drained: make(chan struct{}),
	}
	if len(jobs) == 0 {
		return &r.report, nil
	}
	for _, j := range jobs {
		r.queue.Enqueue(&task{job: j})
	}

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			p.work(ctx, r, p.log.With(zap.Int("worker", worker)))
		}(i)
	}
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending > 0 {
		return &r.report, ctx.Err()
	}
	return &r.report, nil
}

func (p *Pool) work(ctx context.Context, r *run, log *zap.Logger) {
	for {
		t, ok := r.queue.TryDequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-r.drained:
				return
			case <-r.queue.Wait():
				continue
			}
		}
		if ctx.Err() != nil {
			return
		}
		p.step(ctx, r, t, log.With(zap.String("task", t.job.Name)))
	}
}

// step runs one attempt of t.
func (p *Pool) step(ctx context.Context, r *run, t *task, log *zap.Logger) {
	t.attempts++
	doc, at, err := p.fetch(ctx, t)
	if ctx.Err() != nil {
		// Cancelled mid-attempt; Run reports the unfinished jobs.
		return
	}
	p.gate.mark(at)

	switch {
	case errors.Is(err, fetch.ErrNotFound):
		log.Warn("no idl found, skipping", zap.Error(err))
		r.finish(func(rep *Report) {
			rep.Skipped = append(rep.Skipped, Result{Name: t.job.Name, Attempts: t.attempts, Err: err})
		})
		return
	case err != nil:
		p.gate.failure()
		if t.attempts <= p.cfg.MaxRetries {
			log.Info("fetch failed, requeueing",
				zap.Int("attempt", t.attempts),
				zap.Int("errors", p.gate.Errors()),
				zap.Error(err))
			r.queue.Enqueue(t)
			return
		}
		exceeded := &RetriesExceededError{Task: t.job.Name, Attempts: t.attempts, Err: err}
		log.Warn("retries exhausted, skipping", zap.Error(exceeded))
		r.finish(func(rep *Report) {
			rep.Skipped = append(rep.Skipped, Result{Name: t.job.Name, Attempts: t.attempts, Err: exceeded})
		})
		return
	}

	start := p.clock.Now()
	perr := t.job.Process(ctx, doc)
	// Half the processing time counts against the next caller.
	p.gate.mark(at.Add(p.clock.Now().Sub(start) / 2))
	p.gate.success()

	if perr != nil {
		log.Error("processing failed", zap.Error(perr))
		r.finish(func(rep *Report) {
			rep.Failed = append(rep.Failed, Result{Name: t.job.Name, Attempts: t.attempts, Err: perr})
		})
		return
	}
	log.Debug("task done", zap.Int("attempts", t.attempts))
	r.finish(func(rep *Report) {
		rep.Done = append(rep.Done, Result{Name: t.job.Name, Attempts: t.attempts})
	})
}

// fetch waits for a permit and the shared delay, then runs the job's
// fetch. It returns the time the call was made.
func (p *Pool) fetch(ctx context.Context, t *task) ([]byte, time.Time, error) {
	select {
	case p.permits <- struct{}{}:
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	}
	defer func() { <-p.permits }()

	now := p.clock.Now()
	if d := p.gate.delay(now); d > 0 {
		if err := p.clock.Sleep(ctx, d); err != nil {
			return nil, time.Time{}, err
		}
		now = p.clock.Now()
	}
	doc, err := t.job.Fetch(ctx)
	return doc, now, err
}
