package tree

// Tree is an immutable snapshot of the schedule forest. The roots are
// channels; every lookup is served from an id index built once in New.
type Tree struct {
	roots  []*Node
	byID   map[string]*Node
	parent map[string]*Node
	pre    map[string]int // pre-order position, used for display ordering
}

// New indexes roots. The caller hands over ownership of the nodes.
func New(roots []*Node) *Tree {
	t := &Tree{
		roots:  roots,
		byID:   make(map[string]*Node),
		parent: make(map[string]*Node),
		pre:    make(map[string]int),
	}
	var walk func(n, p *Node)
	walk = func(n, p *Node) {
		t.byID[n.ID] = n
		t.pre[n.ID] = len(t.pre)
		if p != nil {
			t.parent[n.ID] = p
		}
		for _, ch := range n.Children {
			walk(ch, n)
		}
	}
	for _, r := range roots {
		walk(r, nil)
	}
	return t
}

// Empty returns a tree with no nodes.
func Empty() *Tree { return New(nil) }

func (t *Tree) Roots() []*Node { return t.roots }

// Len reports the number of nodes in the forest.
func (t *Tree) Len() int { return len(t.byID) }

func (t *Tree) Find(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Parent returns the parent of id, or nil for channels and unknown ids.
func (t *Tree) Parent(id string) *Node {
	return t.parent[id]
}

// Children returns the children of parentID; the empty id addresses the root
// level.
func (t *Tree) Children(parentID string) []*Node {
	if parentID == "" {
		return t.roots
	}
	if n, ok := t.byID[parentID]; ok {
		return n.Children
	}
	return nil
}

// Siblings returns the group id belongs to, including id itself.
func (t *Tree) Siblings(id string) []*Node {
	if p := t.parent[id]; p != nil {
		return p.Children
	}
	if _, ok := t.byID[id]; ok {
		return t.roots
	}
	return nil
}

// IndexOf returns the position of id among its siblings, or -1.
func (t *Tree) IndexOf(id string) int {
	for i, n := range t.Siblings(id) {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// IsDescendantOf reports whether candidateID lies in the subtree rooted at
// ancestorID. A node is part of its own subtree.
func (t *Tree) IsDescendantOf(candidateID, ancestorID string) bool {
	if _, ok := t.byID[candidateID]; !ok {
		return false
	}
	for id := candidateID; ; {
		if id == ancestorID {
			return true
		}
		p := t.parent[id]
		if p == nil {
			return false
		}
		id = p.ID
	}
}

// CollectDescendantIDs lists n and every node below it in pre-order.
func CollectDescendantIDs(n *Node) []string {
	if n == nil {
		return nil
	}
	out := []string{}
	var walk func(*Node)
	walk = func(x *Node) {
		out = append(out, x.ID)
		for _, ch := range x.Children {
			walk(ch)
		}
	}
	walk(n)
	return out
}

// OwningChannel walks up from id to the channel that contains it.
func (t *Tree) OwningChannel(id string) *Node {
	n, ok := t.byID[id]
	if !ok {
		return nil
	}
	for n.Type != TypeChannel {
		p := t.parent[n.ID]
		if p == nil {
			return nil
		}
		n = p
	}
	return n
}

// DisplayIndex is the position of id in a fully expanded top-down listing.
func (t *Tree) DisplayIndex(id string) int {
	if i, ok := t.pre[id]; ok {
		return i
	}
	return -1
}

// OfType lists every node of the given type in display order.
func (t *Tree) OfType(typ NodeType) []*Node {
	out := []*Node{}
	t.Walk(func(n *Node, _ int) bool {
		if n.Type == typ {
			out = append(out, n)
		}
		return true
	})
	return out
}

// NextOfType returns the node of the same type that follows id in display
// order, crossing parent boundaries (the playlist after the last playlist of a
// channel is the first playlist of the next channel).
func (t *Tree) NextOfType(id string) *Node {
	n, ok := t.byID[id]
	if !ok {
		return nil
	}
	var found, next *Node
	t.Walk(func(x *Node, _ int) bool {
		if next != nil {
			return false
		}
		if x.Type != n.Type {
			return true
		}
		if found != nil {
			next = x
			return false
		}
		if x.ID == id {
			found = x
		}
		return true
	})
	return next
}

// Walk visits the forest top-down. Returning false from fn skips the node's
// children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, ch := range n.Children {
			walk(ch, depth+1)
		}
	}
	for _, r := range t.roots {
		walk(r, 0)
	}
}

// Rows lists the visible rows top-down. Channels are always visible; the
// children of a node are visible when expanded reports true for it.
func (t *Tree) Rows(expanded func(id string) bool) []*Node {
	out := []*Node{}
	t.Walk(func(n *Node, _ int) bool {
		out = append(out, n)
		return len(n.Children) > 0 && expanded != nil && expanded(n.ID)
	})
	return out
}

// Clone deep-copies the roots so a caller can edit them freely.
func (t *Tree) Clone() []*Node {
	out := make([]*Node, len(t.roots))
	for i, r := range t.roots {
		out[i] = r.Clone()
	}
	return out
}
