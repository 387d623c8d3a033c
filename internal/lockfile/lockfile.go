// Package lockfile provides per-file advisory locks for cross-process
// serialization of index updates. Locks are scoped to one path, so writers
// touching unrelated files never contend.
package lockfile

import (
	"errors"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired before the
// deadline, usually because another publisher holds it.
var ErrTimeout = errors.New("lockfile: timeout acquiring lock")

// DefaultTimeout bounds lock acquisition so a contended publish fails instead
// of queueing forever behind a slow writer.
const DefaultTimeout = 10 * time.Second

// retryInterval is the pause between non-blocking acquisition attempts.
const retryInterval = 25 * time.Millisecond
