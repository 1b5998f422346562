package tree

import (
	"sort"
)

// FromFlat assembles a tree from a flat node list such as the one returned by
// a store. Children are ordered by Order, ties broken by ID, and their Order
// is rewritten to their array position. Nodes whose parent is missing or sits
// at the wrong level are left out and returned as dropped.
func FromFlat(nodes []Node) (t *Tree, dropped []Node) {
	byID := make(map[string]*Node, len(nodes))
	for i := range nodes {
		n := nodes[i]
		n.Children = nil
		if !n.Type.Valid() || n.ID == "" {
			dropped = append(dropped, nodes[i])
			continue
		}
		if _, dup := byID[n.ID]; dup {
			dropped = append(dropped, nodes[i])
			continue
		}
		byID[n.ID] = &n
	}

	kids := map[string][]*Node{}
	for _, n := range byID {
		want, hasParent := n.Type.ParentType()
		switch {
		case !hasParent:
			if n.ParentID != "" {
				dropped = append(dropped, *n)
				continue
			}
		default:
			p, ok := byID[n.ParentID]
			if !ok || p.Type != want {
				dropped = append(dropped, *n)
				continue
			}
		}
		kids[n.ParentID] = append(kids[n.ParentID], n)
	}

	for parentID, list := range kids {
		sortByOrder(list)
		for i, n := range list {
			n.Order = i
		}
		if parentID != "" {
			byID[parentID].Children = list
		}
	}
	// A playlist under a dropped channel is unreachable even though its own
	// parent link looked fine.
	t = New(kids[""])
	for _, n := range byID {
		if _, ok := t.byID[n.ID]; !ok && !containsID(dropped, n.ID) {
			dropped = append(dropped, n.Fields())
		}
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].ID < dropped[j].ID })
	return t, dropped
}

func sortByOrder(list []*Node) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].ID < list[j].ID
	})
}

func containsID(nodes []Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Flatten lists every node top-down without children, the shape a store
// exchanges.
func (t *Tree) Flatten() []Node {
	out := make([]Node, 0, len(t.byID))
	t.Walk(func(n *Node, _ int) bool {
		out = append(out, n.Fields())
		return true
	})
	return out
}

// RemapIDs returns a tree where every id found in ids is replaced by its
// mapped value, parent links included. Untouched subtrees are shared with t.
func (t *Tree) RemapIDs(ids map[string]string) *Tree {
	if len(ids) == 0 {
		return t
	}
	hit := false
	for from := range ids {
		if _, ok := t.byID[from]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return t
	}
	var remap func(n *Node) *Node
	remap = func(n *Node) *Node {
		newID, renamed := ids[n.ID]
		newParent, reparented := ids[n.ParentID]
		var kids []*Node
		kidsChanged := false
		for i, ch := range n.Children {
			r := remap(ch)
			if r != ch && !kidsChanged {
				kids = append([]*Node{}, n.Children[:i]...)
				kidsChanged = true
			}
			if kidsChanged {
				kids = append(kids, r)
			}
		}
		if !renamed && !reparented && !kidsChanged {
			return n
		}
		c := *n
		if renamed {
			c.ID = newID
		}
		if reparented {
			c.ParentID = newParent
		}
		if kidsChanged {
			c.Children = kids
		}
		return &c
	}
	roots := make([]*Node, len(t.roots))
	for i, r := range t.roots {
		roots[i] = remap(r)
	}
	return New(roots)
}
