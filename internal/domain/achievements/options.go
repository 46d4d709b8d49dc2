package achievements

import (
	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/pkg/logger"
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithRunner sets the fan-out runner used for per-title lookups.
func WithRunner(r fanout.Runner) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.runner = r
		}
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}
