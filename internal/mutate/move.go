package mutate

import (
	"fmt"

	"channel-scheduler/internal/naming"
	"channel-scheduler/internal/tree"
)

// MoveRequest places IDs contiguously at Index among the children of
// ParentID ("" for the channel level). Index counts the target's children
// after the moved nodes were taken out, as a dropzone.Target does.
type MoveRequest struct {
	IDs      []string
	ParentID string
	Index    int
}

// Move reparents or reorders a same-type selection. Nodes keep their names
// when they stay under the same parent; nodes arriving from elsewhere are
// renamed against the target group.
func (e *Engine) Move(t *tree.Tree, req MoveRequest) (Result, error) {
	sel, err := t.Independent(req.IDs)
	if err != nil {
		return Result{}, err
	}
	typ := sel[0].Type
	if err := checkParent(t, req.ParentID, typ); err != nil {
		return Result{}, err
	}
	if req.ParentID != "" && t.Covers(sel, req.ParentID) {
		return Result{}, tree.ErrDropIntoSelf
	}

	w := newWorkspace(t)
	origins := map[string]bool{}
	batch := make([]*tree.Node, len(sel))
	for i, n := range sel {
		origins[n.ParentID] = true
		batch[i] = w.detach(n.ID)
	}

	taken := w.names(req.ParentID, nil)
	for _, n := range batch {
		if n.ParentID == req.ParentID {
			taken = append(taken, n.Name)
		}
	}
	for _, n := range batch {
		if n.ParentID != req.ParentID {
			n.Name = naming.ResolveUniqueName(n.Name, taken)
			taken = append(taken, n.Name)
		}
	}

	w.insert(req.ParentID, req.Index, batch...)
	w.renumber(req.ParentID)
	for pid := range origins {
		w.renumber(pid)
	}

	after := w.tree()
	ops := diff(t, after, PhasePrepare)
	if len(ops) == 0 {
		return unchanged(t), nil
	}
	return finish(after, ops), nil
}

// checkParent verifies that nodes of typ may live under parentID.
func checkParent(t *tree.Tree, parentID string, typ tree.NodeType) error {
	want, hasParent := typ.ParentType()
	if parentID == "" {
		if hasParent {
			return fmt.Errorf("%w: %s at channel level", tree.ErrIncompatible, typ)
		}
		return nil
	}
	p, ok := t.Find(parentID)
	if !ok {
		return fmt.Errorf("%w: %s", tree.ErrNotFound, parentID)
	}
	if !hasParent || p.Type != want {
		return fmt.Errorf("%w: %s under %s", tree.ErrIncompatible, typ, p.Type)
	}
	return nil
}
