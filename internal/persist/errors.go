package persist

import "fmt"

// PersistenceError is a failed user sync or session write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RevalidationError is a failed view invalidation after a committed write.
// It is logged and never returned to callers.
type RevalidationError struct {
	View string
	Key  string
	Err  error
}

func (e *RevalidationError) Error() string {
	return fmt.Sprintf("invalidate %s view %q: %v", e.View, e.Key, e.Err)
}

func (e *RevalidationError) Unwrap() error { return e.Err }
