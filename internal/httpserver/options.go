package httpserver

import "go.uber.org/zap"

// config holds the assembled result of applying Options to the
// defaults. It is unexported: callers only ever see Option values.
type config struct {
	logger      *zap.Logger
	maxConns    int64
	tuneSockets bool
}

func defaultConfig() config {
	return config{
		logger:      zap.NewNop(),
		maxConns:    0, // 0 means unlimited
		tuneSockets: true,
	}
}

// Option configures a Serve call. Options are additive: none of them
// change the timeout or size-cap constants the connection controller
// and request parser enforce.
type Option func(*config)

// WithLogger sets the *zap.Logger used for accept-loop errors,
// synthesized error responses, and handler panics. The default is a
// no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxConnections bounds the number of connections served
// concurrently using a weighted semaphore; additional accepted
// connections wait for a slot before their per-connection loop starts.
// n <= 0 means unlimited, the default.
func WithMaxConnections(n int64) Option {
	return func(c *config) {
		c.maxConns = n
	}
}

// WithSocketTuning enables or disables the SO_REUSEADDR/TCP_NODELAY
// best-effort socket tuning applied to the listener and accepted
// connections on Linux. Enabled by default; tuning is always a no-op
// on non-Linux platforms.
func WithSocketTuning(enabled bool) Option {
	return func(c *config) {
		c.tuneSockets = enabled
	}
}
