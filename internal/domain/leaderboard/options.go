package leaderboard

import (
	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/pkg/logger"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithRunner sets the fan-out runner used for per-member analysis.
func WithRunner(r fanout.Runner) Option {
	return func(b *Builder) {
		if r != nil {
			b.runner = r
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}
