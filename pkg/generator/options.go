package generator

import loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"

// Option configures optional runtime dependencies for Session.
type Option func(*sessionDeps)

type sessionDeps struct {
	logger loggerpkg.Logger
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *sessionDeps) {
		if l != nil {
			d.logger = l
		}
	}
}
