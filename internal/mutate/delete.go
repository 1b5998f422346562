package mutate

import "channel-scheduler/internal/tree"

// Delete removes the selected nodes with their subtrees. Unknown ids are
// ignored and selected nodes below another selected node fold into it. The
// result carries one batch delete with every removed id, followed by the
// renumbering of the surviving siblings.
func (e *Engine) Delete(t *tree.Tree, ids []string) (Result, error) {
	var known []string
	for _, id := range ids {
		if _, ok := t.Find(id); ok {
			known = append(known, id)
		}
	}
	if len(known) == 0 {
		return unchanged(t), nil
	}
	sel, err := t.TopLevel(known)
	if err != nil {
		return Result{}, err
	}

	w := newWorkspace(t)
	var doomed []string
	parents := map[string]bool{}
	for _, n := range sel {
		doomed = append(doomed, tree.CollectDescendantIDs(n)...)
		parents[n.ParentID] = true
		w.detach(n.ID)
	}
	for pid := range parents {
		w.renumber(pid)
	}
	after := w.tree()
	ops := []Op{{Kind: KindDelete, Phase: PhaseDelete, IDs: doomed}}
	ops = append(ops, diff(t, after, PhaseFinalize)...)
	return finish(after, ops), nil
}
