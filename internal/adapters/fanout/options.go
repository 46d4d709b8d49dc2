package fanout

import (
	"errors"

	"github.com/okian/gamegraph/pkg/logger"
)

// ErrTaskPanicked wraps a panic recovered from a task.
var ErrTaskPanicked = errors.New("fan-out task panicked")

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithLimit bounds concurrent tasks. Values below one are ignored.
func WithLimit(limit int) Option {
	return func(p *Pool) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithClassifier maps a task error to the outcome label used in metrics.
func WithClassifier(classify func(error) string) Option {
	return func(p *Pool) {
		if classify != nil {
			p.classify = classify
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
