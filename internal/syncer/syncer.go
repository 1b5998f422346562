// Package syncer publishes optimistic trees and replays mutation ops against
// the persistence collaborator, falling back to a full refetch whenever the
// store rejects part of a change.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/tree"
)

// Store is the persistence collaborator. Create assigns the id; the id field
// of the node passed in is empty.
type Store interface {
	Create(ctx context.Context, n tree.Node) (string, error)
	Update(ctx context.Context, id string, p tree.Patch) error
	BatchDelete(ctx context.Context, ids []string) error
	FetchAll(ctx context.Context) ([]tree.Node, error)
}

const defaultConcurrency = 8

type Syncer struct {
	store       Store
	concurrency int
	onApply     func(*tree.Tree)

	mu      sync.Mutex
	current *tree.Tree
	gen     uint64
}

type Option func(*Syncer)

// WithOnApply registers fn to observe every tree the syncer publishes.
func WithOnApply(fn func(*tree.Tree)) Option {
	return func(s *Syncer) { s.onApply = fn }
}

// WithConcurrency caps the number of updates in flight per phase.
func WithConcurrency(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(store Store, opts ...Option) *Syncer {
	s := &Syncer{store: store, concurrency: defaultConcurrency, current: tree.Empty()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tree returns the tree the view should render.
func (s *Syncer) Tree() *tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Commit publishes an optimistic tree. Refreshes started before the commit
// will not overwrite it.
func (s *Syncer) Commit(t *tree.Tree) {
	s.mu.Lock()
	s.gen++
	s.current = t
	s.mu.Unlock()
	s.notify(t)
}

// Report summarises a successful dispatch.
type Report struct {
	Created map[string]string // provisional id -> store id
	Updated int
	Deleted []string
}

// Dispatch runs ops phase by phase. On failure the remaining ops are
// abandoned, the tree is refetched, and the returned error is a *SyncError,
// a *PartialCreateError, or a *StaleViewError when the refetch failed too.
func (s *Syncer) Dispatch(ctx context.Context, ops []mutate.Op) (Report, error) {
	rep := Report{Created: map[string]string{}}
	for start := 0; start < len(ops); {
		end := start
		for end < len(ops) && ops[end].Phase == ops[start].Phase {
			end++
		}
		if err := s.runPhase(ctx, ops[start:end], &rep); err != nil {
			return rep, s.fallback(ctx, err)
		}
		start = end
	}

	if len(rep.Created) > 0 {
		s.mu.Lock()
		remapped := s.current.RemapIDs(rep.Created)
		changed := remapped != s.current
		s.current = remapped
		s.mu.Unlock()
		if changed {
			s.notify(remapped)
		}
	}
	return rep, nil
}

func (s *Syncer) runPhase(ctx context.Context, ops []mutate.Op, rep *Report) error {
	var updates []mutate.Op
	for _, op := range ops {
		switch op.Kind {
		case mutate.KindCreate:
			if err := s.create(ctx, op, rep); err != nil {
				return err
			}
		case mutate.KindDelete:
			if len(op.IDs) == 0 {
				continue
			}
			if err := s.store.BatchDelete(ctx, op.IDs); err != nil {
				return &SyncError{Op: op, Err: err}
			}
			rep.Deleted = append(rep.Deleted, op.IDs...)
		case mutate.KindUpdate:
			updates = append(updates, op)
		}
	}
	if len(updates) == 0 {
		return nil
	}

	// Updates of one phase touch disjoint nodes and may land in any order.
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, op := range updates {
		id, err := resolve(op.ID, rep.Created)
		if err != nil {
			return &SyncError{Op: op, Err: err}
		}
		op := op
		g.Go(func() error {
			if err := s.store.Update(ctx, id, op.Patch); err != nil {
				return &SyncError{Op: op, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	rep.Updated += len(updates)
	return nil
}

func (s *Syncer) create(ctx context.Context, op mutate.Op, rep *Report) error {
	n := op.Node
	n.ID = ""
	n.Children = nil
	parent, err := resolve(n.ParentID, rep.Created)
	if err != nil {
		return &PartialCreateError{Created: createdIDs(rep), Failed: op.Node, Err: err}
	}
	n.ParentID = parent
	id, err := s.store.Create(ctx, n)
	if err != nil {
		return &PartialCreateError{Created: createdIDs(rep), Failed: op.Node, Err: err}
	}
	rep.Created[op.ID] = id
	return nil
}

func resolve(id string, created map[string]string) (string, error) {
	if !mutate.IsProvisional(id) {
		return id, nil
	}
	if got, ok := created[id]; ok {
		return got, nil
	}
	return "", fmt.Errorf("%s was never created", id)
}

func createdIDs(rep *Report) []string {
	out := make([]string, 0, len(rep.Created))
	for _, id := range rep.Created {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Syncer) fallback(ctx context.Context, cause error) error {
	log.Printf("syncer: dispatch: %v", cause)
	if _, err := s.Reconcile(ctx); err != nil {
		return &StaleViewError{Cause: cause, Err: err}
	}
	return cause
}

// Reconcile refetches the whole forest and replaces the local tree with it.
// A result is dropped when a later refresh or commit happened while it was
// in flight; applied reports whether it was used.
func (s *Syncer) Reconcile(ctx context.Context) (applied bool, err error) {
	s.mu.Lock()
	s.gen++
	token := s.gen
	s.mu.Unlock()

	nodes, err := s.store.FetchAll(ctx)
	if err != nil {
		return false, fmt.Errorf("syncer: fetch all: %w", err)
	}
	t, dropped := tree.FromFlat(nodes)
	for _, n := range dropped {
		log.Printf("syncer: reconcile: skipping %s %q (parent %q)", n.Type, n.ID, n.ParentID)
	}

	s.mu.Lock()
	if s.gen != token {
		s.mu.Unlock()
		return false, nil
	}
	s.current = t
	s.mu.Unlock()
	s.notify(t)
	return true, nil
}

func (s *Syncer) notify(t *tree.Tree) {
	if s.onApply != nil {
		s.onApply(t)
	}
}
