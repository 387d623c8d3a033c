package cratedock

import "time"

type initOptions struct {
	force    bool
	api      bool
	defaults []string
}

// InitOption is a functional option for Initialize.
type InitOption func(*initOptions)

// WithForce allows Initialize to run on a non-empty directory, replacing any
// existing config document wholesale.
func WithForce() InitOption {
	return func(o *initOptions) { o.force = true }
}

// WithAPI records the base URL in the config's api field, advertising an API
// endpoint to clients.
func WithAPI() InitOption {
	return func(o *initOptions) { o.api = true }
}

// WithDefaults records default feature flags in the config document.
func WithDefaults(flags ...string) InitOption {
	return func(o *initOptions) { o.defaults = flags }
}

// OpenOption is a functional option for Open.
type OpenOption func(*Registry)

// WithLockTimeout bounds how long a publish or yank waits for the
// per-package lock before failing with ErrLockTimeout.
func WithLockTimeout(d time.Duration) OpenOption {
	return func(r *Registry) {
		if d > 0 {
			r.lockTimeout = d
		}
	}
}
