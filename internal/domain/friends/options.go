package friends

import (
	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/pkg/logger"
)

type options struct {
	runner   fanout.Runner
	logger   logger.Logger
	minHours float64
}

// Option configures an Aggregator or OverlapCalculator.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		runner:   fanout.New(),
		logger:   logger.Nop(),
		minHours: DefaultMinAverageHours,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRunner sets the fan-out runner used for per-friend lookups.
func WithRunner(r fanout.Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMinAverageHours sets the popular-title threshold. Negative values are
// ignored. OverlapCalculator does not use it.
func WithMinAverageHours(hours float64) Option {
	return func(o *options) {
		if hours >= 0 {
			o.minHours = hours
		}
	}
}
