package mutate

import (
	"fmt"
	"strings"

	"channel-scheduler/internal/naming"
	"channel-scheduler/internal/tree"
)

// AddChild appends a new node under parentID ("" adds a channel). The node's
// type follows from the parent; a blank name becomes "New <type>". Names are
// made unique among the new siblings.
func (e *Engine) AddChild(t *tree.Tree, parentID string, n tree.Node) (Result, error) {
	want := tree.TypeChannel
	if parentID != "" {
		p, ok := t.Find(parentID)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", tree.ErrNotFound, parentID)
		}
		ct, ok := p.Type.ChildType()
		if !ok {
			return Result{}, fmt.Errorf("%w: %s has no children", tree.ErrIncompatible, p.Type)
		}
		want = ct
	}
	if n.Type != "" && n.Type != want {
		return Result{}, fmt.Errorf("%w: %s under %q", tree.ErrIncompatible, n.Type, parentID)
	}
	n.Type = want

	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		n.Name = "New " + string(want)
	}
	if want == tree.TypeChannel && n.ChannelRef != "" {
		for _, ch := range t.Roots() {
			if ch.ChannelRef == n.ChannelRef {
				return Result{}, fmt.Errorf("%w: %s", tree.ErrChannelRefUsed, n.ChannelRef)
			}
		}
	}
	scrub(&n)

	w := newWorkspace(t)
	n.ID = e.provisional()
	n.Children = nil
	n.Name = naming.ResolveUniqueName(n.Name, w.names(parentID, nil))
	w.insert(parentID, len(w.children(parentID)), &n)
	w.renumber(parentID)
	after := w.tree()
	return finish(after, diff(t, after, PhasePrepare)), nil
}

// scrub clears the fields that do not belong to n's type.
func scrub(n *tree.Node) {
	if n.Type != tree.TypeChannel {
		n.ChannelRef = ""
	}
	if n.Type != tree.TypePlaylist {
		n.CarouselKind, n.CarouselLabel = "", ""
	}
	if n.Type != tree.TypeBucket {
		n.ContentRef = ""
	}
}

// Rename gives id a new name, numbered if a sibling already uses it.
func (e *Engine) Rename(t *tree.Tree, id, name string) (Result, error) {
	n, ok := t.Find(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, tree.ErrInvalidName
	}
	w := newWorkspace(t)
	w.byID[id].Name = naming.ResolveUniqueName(name, w.names(n.ParentID, map[string]bool{id: true}))
	return e.commit(t, w)
}

// SetActive switches the active flag on every known id.
func (e *Engine) SetActive(t *tree.Tree, ids []string, active bool) (Result, error) {
	w := newWorkspace(t)
	for _, id := range ids {
		if n, ok := w.byID[id]; ok {
			n.Active = active
		}
	}
	return e.commit(t, w)
}

// SetSchedule stores the raw schedule expression of id. The expression is
// interpreted elsewhere.
func (e *Engine) SetSchedule(t *tree.Tree, id, schedule string) (Result, error) {
	if _, ok := t.Find(id); !ok {
		return Result{}, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	w := newWorkspace(t)
	w.byID[id].Schedule = strings.TrimSpace(schedule)
	return e.commit(t, w)
}

func (e *Engine) commit(t *tree.Tree, w *workspace) (Result, error) {
	after := w.tree()
	ops := diff(t, after, PhasePrepare)
	if len(ops) == 0 {
		return unchanged(t), nil
	}
	return finish(after, ops), nil
}
