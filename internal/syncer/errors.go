package syncer

import (
	"fmt"
	"strings"

	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/tree"
)

// SyncError reports a rejected update or delete. The local tree has been
// refreshed from the store; the caller may retry.
type SyncError struct {
	Op  mutate.Op
	Err error
}

func (e *SyncError) Error() string {
	target := e.Op.ID
	if e.Op.Kind == mutate.KindDelete {
		target = strings.Join(e.Op.IDs, ",")
	}
	return fmt.Sprintf("syncer: %s %s: %v", e.Op.Kind, target, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// PartialCreateError reports a paste that stopped midway. Created lists the
// store ids of the nodes that were written before the failure.
type PartialCreateError struct {
	Created []string
	Failed  tree.Node
	Err     error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("syncer: create %s %q failed after %d nodes were written: %v",
		e.Failed.Type, e.Failed.Name, len(e.Created), e.Err)
}

func (e *PartialCreateError) Unwrap() error { return e.Err }

// StaleViewError means the refresh after a failure failed as well. The view
// keeps the last local tree, which may no longer match the store.
type StaleViewError struct {
	Cause error
	Err   error
}

func (e *StaleViewError) Error() string {
	return fmt.Sprintf("syncer: view may be stale: %v (refresh: %v)", e.Cause, e.Err)
}

func (e *StaleViewError) Unwrap() []error { return []error{e.Cause, e.Err} }
