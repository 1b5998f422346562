package mutate

import "channel-scheduler/internal/tree"

// workspace is a private deep copy of a snapshot that can be edited in place
// and frozen back into a tree.
type workspace struct {
	roots    []*tree.Node
	byID     map[string]*tree.Node
	parentOf map[string]string
}

func newWorkspace(t *tree.Tree) *workspace {
	w := &workspace{roots: t.Clone(), byID: map[string]*tree.Node{}, parentOf: map[string]string{}}
	for _, r := range w.roots {
		w.index(r, "")
	}
	return w
}

func (w *workspace) index(n *tree.Node, parentID string) {
	w.byID[n.ID] = n
	w.parentOf[n.ID] = parentID
	for _, ch := range n.Children {
		w.index(ch, n.ID)
	}
}

func (w *workspace) children(parentID string) []*tree.Node {
	if parentID == "" {
		return w.roots
	}
	return w.byID[parentID].Children
}

func (w *workspace) setChildren(parentID string, kids []*tree.Node) {
	if parentID == "" {
		w.roots = kids
		return
	}
	w.byID[parentID].Children = kids
}

// detach unlinks id from its parent and returns it with its subtree.
func (w *workspace) detach(id string) *tree.Node {
	n := w.byID[id]
	pid := w.parentOf[id]
	kids := w.children(pid)
	out := make([]*tree.Node, 0, len(kids))
	for _, k := range kids {
		if k.ID != id {
			out = append(out, k)
		}
	}
	w.setChildren(pid, out)
	return n
}

// insert places nodes contiguously at index among the children of parentID.
// The index is clamped to the group.
func (w *workspace) insert(parentID string, index int, nodes ...*tree.Node) {
	kids := w.children(parentID)
	if index < 0 {
		index = 0
	}
	if index > len(kids) {
		index = len(kids)
	}
	out := make([]*tree.Node, 0, len(kids)+len(nodes))
	out = append(out, kids[:index]...)
	out = append(out, nodes...)
	out = append(out, kids[index:]...)
	w.setChildren(parentID, out)
	for _, n := range nodes {
		n.ParentID = parentID
		w.index(n, parentID)
	}
}

// renumber rewrites Order to the array position inside parentID's group.
func (w *workspace) renumber(parentID string) {
	for i, n := range w.children(parentID) {
		n.Order = i
	}
}

func (w *workspace) names(parentID string, skip map[string]bool) []string {
	var out []string
	for _, n := range w.children(parentID) {
		if !skip[n.ID] {
			out = append(out, n.Name)
		}
	}
	return out
}

func (w *workspace) tree() *tree.Tree { return tree.New(w.roots) }
