// Package fanout runs independent upstream tasks with bounded concurrency.
//
// A task failure is reported for that task only: siblings are never
// cancelled, and results are addressed by input index so callers never
// depend on completion order.
package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/gamegraph/pkg/logger"
	"github.com/okian/gamegraph/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const defaultLimit = 16

// Runner executes n indexed tasks and returns one error slot per task.
type Runner interface {
	Run(ctx context.Context, component string, n int, task func(ctx context.Context, i int) error) []error
}

// Pool is a Runner bounded by a fixed number of concurrent tasks.
type Pool struct {
	limit    int
	classify func(error) string
	logger   logger.Logger
}

// New creates a pool. Without options it allows 16 concurrent tasks.
func New(opts ...Option) *Pool {
	p := &Pool{
		limit:    defaultLimit,
		classify: defaultClassify,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Limit returns the configured concurrency bound.
func (p *Pool) Limit() int { return p.limit }

// Run executes task(ctx, i) for every i in [0, n) and waits for all of them.
// The i-th returned error belongs to the i-th task; a recovered panic is
// reported as that task's error.
func (p *Pool) Run(ctx context.Context, component string, n int, task func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(p.limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = p.runOne(ctx, component, i, task)
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordComponentDuration(component, float64(time.Since(start).Milliseconds()))
	return errs
}

func (p *Pool) runOne(ctx context.Context, component string, i int, task func(ctx context.Context, i int) error) (err error) {
	metrics.IncFanoutInFlight()
	defer metrics.DecFanoutInFlight()

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordFanoutPanic()
			p.logger.Error(ctx, "fan-out task panicked",
				logger.String("component", component),
				logger.Int("task", i),
				logger.Any("panic", r),
			)
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		metrics.RecordFanoutTask(component, p.classify(err))
	}()

	return task(ctx, i)
}

func defaultClassify(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return metrics.OutcomeError
}

// Result pairs a task's value with its error.
type Result[T any] struct {
	Value T
	Err   error
}

// Map applies fn to every input through r and returns results in input order.
func Map[In, Out any](ctx context.Context, r Runner, component string, inputs []In, fn func(ctx context.Context, in In) (Out, error)) []Result[Out] {
	out := make([]Result[Out], len(inputs))
	errs := r.Run(ctx, component, len(inputs), func(ctx context.Context, i int) error {
		v, err := fn(ctx, inputs[i])
		out[i].Value = v
		return err
	})
	for i, err := range errs {
		out[i].Err = err
	}
	return out
}
