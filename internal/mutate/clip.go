package mutate

import (
	"fmt"

	"channel-scheduler/internal/naming"
	"channel-scheduler/internal/tree"
)

// Clip is the clipboard content: a detached deep copy of a subtree holding
// persisted fields only. Node ids inside Root are the source ids.
type Clip struct {
	Root     *tree.Node
	SourceID string
	Cut      bool
}

// Copy snapshots the subtree rooted at id.
func Copy(t *tree.Tree, id string) (*Clip, error) {
	n, ok := t.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	return &Clip{Root: n.Clone(), SourceID: id}, nil
}

// Cut is Copy with the source scheduled for deletion once the pasted copy
// exists.
func Cut(t *tree.Tree, id string) (*Clip, error) {
	c, err := Copy(t, id)
	if err != nil {
		return nil, err
	}
	c.Cut = true
	return c, nil
}

// BucketRemap retargets one copied bucket, addressed by its source id, to
// different content while a channel is pasted onto a channel.
type BucketRemap struct {
	ContentRef string `json:"contentRef"`
	Name       string `json:"name,omitempty"`
}

type PasteRequest struct {
	Clip     *Clip
	TargetID string
	Remap    map[string]BucketRemap
}

// Paste recreates the clip near the target. A nil clip is a no-op.
//
// The ops shift the siblings after the landing spot first, then create the
// copy top-down. For a cut the source is deleted afterwards and the
// surviving siblings renumbered; a cut channel gets its channel reference
// back only once the source released it.
func (e *Engine) Paste(t *tree.Tree, req PasteRequest) (Result, error) {
	clip := req.Clip
	if clip == nil || clip.Root == nil {
		return unchanged(t), nil
	}
	target, ok := t.Find(req.TargetID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", tree.ErrNotFound, req.TargetID)
	}
	var source *tree.Node
	if clip.Cut {
		if source, ok = t.Find(clip.SourceID); !ok {
			return Result{}, fmt.Errorf("%w: cut source %s", tree.ErrNotFound, clip.SourceID)
		}
		if t.IsDescendantOf(target.ID, source.ID) {
			return Result{}, tree.ErrDropIntoSelf
		}
	}
	parentID, index, err := landing(t, clip.Root.Type, target)
	if err != nil {
		return Result{}, err
	}

	sources := map[string]string{}
	root := e.cloneFresh(clip.Root, parentID, sources)
	root.ChannelRef = ""
	if clip.Root.Type == tree.TypeChannel && target.Type == tree.TypeChannel && len(req.Remap) > 0 {
		applyRemap(root, sources, req.Remap)
	}

	w := newWorkspace(t)
	skip := map[string]bool{}
	if source != nil {
		skip[source.ID] = true
	}
	root.Name = naming.ResolveUniqueName(root.Name, w.names(parentID, skip))
	w.insert(parentID, index, root)
	w.renumber(parentID)
	mid := w.tree()
	ops := diff(t, mid, PhasePrepare)

	if source == nil {
		return finish(mid, ops), nil
	}

	w = newWorkspace(mid)
	w.detach(source.ID)
	w.renumber(source.ParentID)
	if source.ChannelRef != "" {
		w.byID[root.ID].ChannelRef = source.ChannelRef
	}
	after := w.tree()
	ops = append(ops, Op{Kind: KindDelete, Phase: PhaseDelete, IDs: tree.CollectDescendantIDs(source)})
	ops = append(ops, diff(mid, after, PhaseFinalize)...)
	return finish(after, ops), nil
}

// Duplicate pastes a copy of id right after it.
func (e *Engine) Duplicate(t *tree.Tree, id string) (Result, error) {
	clip, err := Copy(t, id)
	if err != nil {
		return Result{}, err
	}
	return e.Paste(t, PasteRequest{Clip: clip, TargetID: id})
}

// landing decides where a clip of type typ goes when pasted onto target.
func landing(t *tree.Tree, typ tree.NodeType, target *tree.Node) (string, int, error) {
	after := func(n *tree.Node) (string, int, error) {
		return n.ParentID, t.IndexOf(n.ID) + 1, nil
	}
	into := func(n *tree.Node) (string, int, error) {
		return n.ID, len(n.Children), nil
	}
	switch typ {
	case tree.TypeChannel:
		return after(t.OwningChannel(target.ID))
	case tree.TypePlaylist:
		switch target.Type {
		case tree.TypeChannel:
			return into(target)
		case tree.TypePlaylist:
			return after(target)
		case tree.TypeBucket:
			return after(t.Parent(target.ID))
		}
	case tree.TypeBucket:
		switch target.Type {
		case tree.TypePlaylist:
			return into(target)
		case tree.TypeBucket:
			return after(target)
		case tree.TypeChannel:
			if len(target.Children) == 0 {
				return "", 0, fmt.Errorf("%w: channel %s has no playlist", tree.ErrIncompatible, target.ID)
			}
			return into(target.Children[0])
		}
	}
	return "", 0, fmt.Errorf("%w: %s onto %s", tree.ErrIncompatible, typ, target.Type)
}

// cloneFresh copies n under provisional ids, recording new id -> source id.
func (e *Engine) cloneFresh(n *tree.Node, parentID string, sources map[string]string) *tree.Node {
	c := n.Fields()
	c.ID = e.provisional()
	c.ParentID = parentID
	sources[c.ID] = n.ID
	for i, ch := range n.Children {
		k := e.cloneFresh(ch, c.ID, sources)
		k.Order = i
		c.Children = append(c.Children, k)
	}
	return &c
}

// applyRemap rewrites remapped buckets and then restores unique names inside
// every playlist of the pasted channel.
func applyRemap(root *tree.Node, sources map[string]string, remap map[string]BucketRemap) {
	for _, pl := range root.Children {
		hit := false
		for _, b := range pl.Children {
			r, ok := remap[sources[b.ID]]
			if !ok {
				continue
			}
			hit = true
			b.ContentRef = r.ContentRef
			if r.Name != "" {
				b.Name = r.Name
			}
		}
		if !hit {
			continue
		}
		var taken []string
		for _, b := range pl.Children {
			b.Name = naming.ResolveUniqueName(b.Name, taken)
			taken = append(taken, b.Name)
		}
	}
}
