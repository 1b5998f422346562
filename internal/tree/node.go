package tree

// NodeType determines where a node may live in the hierarchy.
type NodeType string

const (
	TypeChannel  NodeType = "channel"
	TypePlaylist NodeType = "playlist"
	TypeBucket   NodeType = "bucket"
)

func (t NodeType) Valid() bool {
	switch t {
	case TypeChannel, TypePlaylist, TypeBucket:
		return true
	}
	return false
}

// ParentType returns the type a parent of t must have. Channels live at the
// root and report ok=false.
func (t NodeType) ParentType() (NodeType, bool) {
	switch t {
	case TypePlaylist:
		return TypeChannel, true
	case TypeBucket:
		return TypePlaylist, true
	}
	return "", false
}

// ChildType returns the type of nodes t may contain. Buckets are leaves.
func (t NodeType) ChildType() (NodeType, bool) {
	switch t {
	case TypeChannel:
		return TypePlaylist, true
	case TypePlaylist:
		return TypeBucket, true
	}
	return "", false
}

// Node is one entry of the schedule forest. Nodes reachable from a *Tree are
// shared between snapshots and must be treated as read-only.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Name     string   `json:"name"`
	Order    int      `json:"order"`
	ParentID string   `json:"parentId,omitempty"`

	Active   bool   `json:"active"`
	Schedule string `json:"schedule,omitempty"`

	ChannelRef    string `json:"channelRef,omitempty"`    // channel only
	CarouselKind  string `json:"carouselKind,omitempty"`  // playlist only
	CarouselLabel string `json:"carouselLabel,omitempty"` // playlist only
	ContentRef    string `json:"contentRef,omitempty"`    // bucket only

	Children []*Node `json:"children,omitempty"`
}

// Fields returns a copy of n without its children.
func (n *Node) Fields() Node {
	c := *n
	c.Children = nil
	return c
}

// Clone deep-copies n and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	} else {
		c.Children = nil
	}
	return &c
}

// Patch is a partial update of persisted node fields. Nil pointers are left
// untouched.
type Patch struct {
	ParentID      *string `json:"parentId,omitempty"`
	Name          *string `json:"name,omitempty"`
	Order         *int    `json:"order,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	Schedule      *string `json:"schedule,omitempty"`
	ChannelRef    *string `json:"channelRef,omitempty"`
	CarouselKind  *string `json:"carouselKind,omitempty"`
	CarouselLabel *string `json:"carouselLabel,omitempty"`
	ContentRef    *string `json:"contentRef,omitempty"`
}

func (p Patch) Empty() bool {
	return p.ParentID == nil && p.Name == nil && p.Order == nil && p.Active == nil &&
		p.Schedule == nil && p.ChannelRef == nil && p.CarouselKind == nil &&
		p.CarouselLabel == nil && p.ContentRef == nil
}

// Apply writes the set fields of p onto n.
func (p Patch) Apply(n *Node) {
	if p.ParentID != nil {
		n.ParentID = *p.ParentID
	}
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.Order != nil {
		n.Order = *p.Order
	}
	if p.Active != nil {
		n.Active = *p.Active
	}
	if p.Schedule != nil {
		n.Schedule = *p.Schedule
	}
	if p.ChannelRef != nil {
		n.ChannelRef = *p.ChannelRef
	}
	if p.CarouselKind != nil {
		n.CarouselKind = *p.CarouselKind
	}
	if p.CarouselLabel != nil {
		n.CarouselLabel = *p.CarouselLabel
	}
	if p.ContentRef != nil {
		n.ContentRef = *p.ContentRef
	}
}

// Diff returns the patch that turns before into after.
func Diff(before, after Node) Patch {
	var p Patch
	if before.ParentID != after.ParentID {
		p.ParentID = ptr(after.ParentID)
	}
	if before.Name != after.Name {
		p.Name = ptr(after.Name)
	}
	if before.Order != after.Order {
		p.Order = ptr(after.Order)
	}
	if before.Active != after.Active {
		p.Active = ptr(after.Active)
	}
	if before.Schedule != after.Schedule {
		p.Schedule = ptr(after.Schedule)
	}
	if before.ChannelRef != after.ChannelRef {
		p.ChannelRef = ptr(after.ChannelRef)
	}
	if before.CarouselKind != after.CarouselKind {
		p.CarouselKind = ptr(after.CarouselKind)
	}
	if before.CarouselLabel != after.CarouselLabel {
		p.CarouselLabel = ptr(after.CarouselLabel)
	}
	if before.ContentRef != after.ContentRef {
		p.ContentRef = ptr(after.ContentRef)
	}
	return p
}

func ptr[T any](v T) *T { return &v }
