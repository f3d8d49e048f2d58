// Package worker runs browser test tasks in parallel. Every worker owns one
// browser session for its whole lifetime and carries it in an explicit
// Context; nothing about the current page is kept in global state.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/entrhq/smartfind/pkg/logging"
	"github.com/entrhq/smartfind/pkg/report"
	"github.com/entrhq/smartfind/pkg/resolver"
)

// SessionFactory opens a browser session for the named worker.
type SessionFactory func(ctx context.Context, name string) (driver.Session, error)

// Context is what one worker hands to each task: its own session plus the
// shared, stateless collaborators.
type Context struct {
	ID       string
	Name     string
	Session  driver.Session
	Resolver *resolver.Resolver
	Sink     report.Sink
	Logger   *logging.Logger
}

// Resolve resolves candidates against this worker's page.
func (c *Context) Resolve(ctx context.Context, candidates []locator.Locator) (*resolver.Resolution, error) {
	return c.Resolver.Resolve(ctx, c.Session, candidates)
}

// CaptureFailure attaches a failure note and, when the session supports it,
// a screenshot.
func (c *Context) CaptureFailure(ctx context.Context, step string, err error) {
	report.CaptureFailure(ctx, c.Sink, c.Session, step, err)
}

// Task is a named unit of work.
type Task struct {
	Name string
	Run  func(ctx context.Context, wc *Context) error
}

// Result is the outcome of one task.
type Result struct {
	Task     string
	Worker   string
	Err      error
	Duration time.Duration
}

// Pool runs tasks on a fixed number of workers.
type Pool struct {
	size     int
	factory  SessionFactory
	resolver *resolver.Resolver
	sink     report.Sink
	logger   *logging.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithSink sets the sink failure attachments go to.
func WithSink(s report.Sink) Option {
	return func(p *Pool) {
		p.sink = s
	}
}

// WithLogger sets the pool's logger. Workers log through it too.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// NewPool creates a pool of size workers. Sizes below one mean one.
func NewPool(size int, factory SessionFactory, r *resolver.Resolver, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{size: size, factory: factory, resolver: r}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = report.NopSink{}
	}
	if p.logger == nil {
		p.logger = logging.Discard("worker")
	}
	if p.resolver == nil {
		p.resolver = resolver.New(resolver.WithLogger(p.logger))
	}
	return p
}

// Run opens one session per worker, runs every task exactly once, and closes
// the sessions. Results are returned in task order. An error is returned only
// when no worker could open a session; failing tasks are reported in their
// Result.
func (p *Pool) Run(ctx context.Context, tasks []Task) ([]Result, error) {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	n := p.size
	if n > len(tasks) {
		n = len(tasks)
	}

	workers, err := p.openWorkers(ctx, n)
	if err != nil {
		return nil, err
	}
	defer p.closeWorkers(workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for _, wc := range workers {
		wg.Add(1)
		go func(wc *Context) {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.runTask(ctx, wc, tasks[i])
			}
		}(wc)
	}

	for i := range tasks {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = Result{Task: tasks[i].Name, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

func (p *Pool) runTask(ctx context.Context, wc *Context, task Task) (res Result) {
	res = Result{Task: task.Name, Worker: wc.Name}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %q panicked: %v", task.Name, r)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			p.logger.Errorf("[%s] %s failed: %v", wc.Name, task.Name, res.Err)
			wc.CaptureFailure(ctx, task.Name, res.Err)
		}
	}()

	wc.Logger.Stepf("[%s] %s", wc.Name, task.Name)
	res.Err = task.Run(ctx, wc)
	return res
}

// openWorkers opens n sessions. Workers whose session fails to open are
// dropped; it is an error only if none opened.
func (p *Pool) openWorkers(ctx context.Context, n int) ([]*Context, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		workers []*Context
		errs    []error
	)

	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			session, err := p.factory(ctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Errorf("[%s] failed to open session: %v", name, err)
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			workers = append(workers, &Context{
				ID:       uuid.New().String(),
				Name:     name,
				Session:  session,
				Resolver: p.resolver,
				Sink:     p.sink,
				Logger:   p.logger,
			})
			p.logger.Infof("[%s] session opened", name)
		}(fmt.Sprintf("worker-%d", i))
	}
	wg.Wait()

	if len(workers) == 0 {
		return nil, fmt.Errorf("no worker session could be opened: %w", errors.Join(errs...))
	}
	return workers, nil
}

func (p *Pool) closeWorkers(workers []*Context) {
	for _, wc := range workers {
		if err := wc.Session.Close(); err != nil {
			p.logger.Warnf("[%s] failed to close session: %v", wc.Name, err)
		}
	}
}
