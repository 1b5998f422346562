// Package dropzone turns a drag gesture (dragged nodes, hovered row, pointer
// height) into the place the dragged nodes would land. Resolution is pure: it
// reads the tree and the view and never changes either, so it can run on every
// pointer move.
package dropzone

import (
	"errors"
	"fmt"

	"channel-scheduler/internal/tree"
)

// ErrNoBounds is returned when the view cannot place the hovered row.
var ErrNoBounds = errors.New("dropzone: hovered row has no bounds")

// Rect is the vertical extent of one rendered row.
type Rect struct {
	Top    float64
	Height float64
}

// View is what the resolver needs from the rendering surface.
type View interface {
	RowBounds(id string) (Rect, bool)
	IsExpanded(id string) bool
}

type Position int

const (
	Above Position = iota
	Below
)

func (p Position) String() string {
	if p == Below {
		return "below"
	}
	return "above"
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	switch string(b) {
	case "above":
		*p = Above
	case "below":
		*p = Below
	default:
		return fmt.Errorf("dropzone: unknown position %q", b)
	}
	return nil
}

// Target is a resolved landing spot. Index counts siblings after the dragged
// nodes have been taken out of the tree.
type Target struct {
	ParentID   string   `json:"parentId"`
	Index      int      `json:"index"`
	Redirected bool     `json:"redirected"`
	AnchorID   string   `json:"anchorId"`
	Position   Position `json:"position"`
}

const (
	halfway     = 0.5
	channelMark = 0.75
)

// Resolve computes where dragIDs would land when dropped at height y over the
// row of overID. dragIDs[0] is the node the gesture started on; its original
// parent drives redirection for the whole batch.
func Resolve(t *tree.Tree, v View, dragIDs []string, overID string, y float64) (Target, error) {
	sel, err := t.Independent(dragIDs)
	if err != nil {
		return Target{}, err
	}
	primary, ok := t.Find(dragIDs[0])
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", tree.ErrNotFound, dragIDs[0])
	}
	// A primary folded into a selected ancestor drags as that ancestor.
	for _, n := range sel {
		if t.IsDescendantOf(primary.ID, n.ID) {
			primary = n
			break
		}
	}
	over, ok := t.Find(overID)
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", tree.ErrNotFound, overID)
	}
	if t.Covers(sel, over.ID) {
		return Target{}, tree.ErrDropIntoSelf
	}
	rect, ok := v.RowBounds(over.ID)
	if !ok {
		return Target{}, ErrNoBounds
	}

	r := resolver{t: t, v: v, sel: sel, origin: primary.ParentID, rect: rect, y: y}
	switch primary.Type {
	case tree.TypeChannel:
		return r.channel(over), nil
	case tree.TypePlaylist:
		return r.playlist(over), nil
	case tree.TypeBucket:
		return r.bucket(over), nil
	}
	return Target{}, tree.ErrIncompatible
}

type resolver struct {
	t      *tree.Tree
	v      View
	sel    []*tree.Node
	origin string // parent of the primary dragged node
	rect   Rect
	y      float64
}

func (r resolver) position(frac float64) Position {
	if r.y >= r.rect.Top+r.rect.Height*frac {
		return Below
	}
	return Above
}

func (r resolver) channel(over *tree.Node) Target {
	if over.Type == tree.TypeChannel {
		return r.at(over, r.position(channelMark))
	}
	// Anywhere inside a channel's block means after that channel.
	return r.at(r.t.OwningChannel(over.ID), Below)
}

func (r resolver) playlist(over *tree.Node) Target {
	switch over.Type {
	case tree.TypeChannel:
		if over.ID != r.origin {
			return r.endOf(r.origin)
		}
		return r.start(over.ID)
	case tree.TypePlaylist:
		pos := r.position(halfway)
		if pos == Above {
			if tg, ok := r.adjacent(over); ok {
				return tg
			}
		}
		return r.at(over, pos)
	default:
		owner := r.t.Parent(over.ID)
		if r.t.IndexOf(over.ID) == 0 && r.position(halfway) == Above {
			if tg, ok := r.adjacent(owner); ok {
				return tg
			}
		}
		return r.at(owner, Below)
	}
}

func (r resolver) bucket(over *tree.Node) Target {
	switch over.Type {
	case tree.TypeChannel:
		return r.endOf(r.origin)
	case tree.TypePlaylist:
		if over.ID == r.origin {
			return r.start(over.ID)
		}
		if r.position(halfway) == Above {
			if next := r.t.NextOfType(r.origin); next != nil && next.ID == over.ID {
				return r.endOf(r.origin)
			}
			return r.start(over.ID)
		}
		if r.v.IsExpanded(over.ID) {
			return r.start(over.ID)
		}
		return r.endOf(over.ID).plain()
	default:
		pos := r.position(halfway)
		if pos == Above {
			if tg, ok := r.adjacent(over); ok {
				return tg
			}
		}
		return r.at(over, pos)
	}
}

// adjacent redirects a drop above the first row of the group that directly
// follows the original parent back to the end of the original parent.
func (r resolver) adjacent(anchor *tree.Node) (Target, bool) {
	if anchor == nil || anchor.ParentID == r.origin || r.origin == "" {
		return Target{}, false
	}
	if r.index(anchor) != 0 {
		return Target{}, false
	}
	next := r.t.NextOfType(r.origin)
	if next == nil || next.ID != anchor.ParentID {
		return Target{}, false
	}
	return r.endOf(r.origin), true
}

func (r resolver) at(anchor *tree.Node, pos Position) Target {
	i := r.index(anchor)
	if pos == Below {
		i++
	}
	return Target{ParentID: anchor.ParentID, Index: i, AnchorID: anchor.ID, Position: pos}
}

func (r resolver) start(parentID string) Target {
	return Target{ParentID: parentID, Index: 0, AnchorID: parentID, Position: Below}
}

// endOf appends to parentID. The anchor is the last visible row of the
// parent's block so a view can draw the insertion line under it.
func (r resolver) endOf(parentID string) Target {
	anchor := parentID
	for cur := parentID; cur == "" || r.v.IsExpanded(cur); {
		kids := r.remaining(cur)
		if len(kids) == 0 {
			break
		}
		anchor = kids[len(kids)-1].ID
		cur = anchor
	}
	return Target{
		ParentID:   parentID,
		Index:      len(r.remaining(parentID)),
		Redirected: true,
		AnchorID:   anchor,
		Position:   Below,
	}
}

func (tg Target) plain() Target {
	tg.Redirected = false
	return tg
}

// remaining lists the children of parentID without the dragged nodes.
func (r resolver) remaining(parentID string) []*tree.Node {
	var out []*tree.Node
	for _, n := range r.t.Children(parentID) {
		if !r.dragged(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

func (r resolver) index(n *tree.Node) int {
	for i, s := range r.remaining(n.ParentID) {
		if s.ID == n.ID {
			return i
		}
	}
	return -1
}

func (r resolver) dragged(id string) bool {
	for _, n := range r.sel {
		if n.ID == id {
			return true
		}
	}
	return false
}
