package tree

import (
	"fmt"
	"sort"
)

// Independent is TopLevel for selections that move together: the nodes must
// share one type.
func (t *Tree) Independent(ids []string) ([]*Node, error) {
	out, err := t.TopLevel(ids)
	if err != nil {
		return nil, err
	}
	for _, n := range out[1:] {
		if n.Type != out[0].Type {
			return nil, ErrMixedTypes
		}
	}
	return out, nil
}

// TopLevel resolves a selection to the nodes that move or die on their own:
// unknown ids fail, duplicates collapse, and nodes that sit below another
// selected node are left out since they travel with it. The result is in
// display order.
func (t *Tree) TopLevel(ids []string) ([]*Node, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	picked := map[string]bool{}
	for _, id := range ids {
		if _, ok := t.byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		picked[id] = true
	}
	out := make([]*Node, 0, len(picked))
	for id := range picked {
		if t.hasPickedAncestor(id, picked) {
			continue
		}
		out = append(out, t.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return t.pre[out[i].ID] < t.pre[out[j].ID] })
	return out, nil
}

func (t *Tree) hasPickedAncestor(id string, picked map[string]bool) bool {
	for p := t.parent[id]; p != nil; p = t.parent[p.ID] {
		if picked[p.ID] {
			return true
		}
	}
	return false
}

// Covers reports whether id lies inside the subtree of any node in set.
func (t *Tree) Covers(set []*Node, id string) bool {
	for _, n := range set {
		if t.IsDescendantOf(id, n.ID) {
			return true
		}
	}
	return false
}
