package tree

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of the forest: fixed depth,
// parent links, contiguous sibling order, unique sibling names and unique
// channel references. All violations are joined into one error.
func (t *Tree) Validate() error {
	var errs []error
	refs := map[string]string{}

	var check func(parent *Node, group []*Node)
	check = func(parent *Node, group []*Node) {
		want := TypeChannel
		parentID := ""
		if parent != nil {
			if len(group) == 0 {
				return
			}
			ct, ok := parent.Type.ChildType()
			if !ok {
				errs = append(errs, fmt.Errorf("%s %q: leaf has children", parent.Type, parent.ID))
				return
			}
			want = ct
			parentID = parent.ID
		}
		names := map[string]string{}
		for i, n := range group {
			if n.Type != want {
				errs = append(errs, fmt.Errorf("%s %q: expected %s at this level", n.Type, n.ID, want))
			}
			if n.ParentID != parentID {
				errs = append(errs, fmt.Errorf("%s %q: parentId %q, contained in %q", n.Type, n.ID, n.ParentID, parentID))
			}
			if n.Order != i {
				errs = append(errs, fmt.Errorf("%s %q: order %d at position %d", n.Type, n.ID, n.Order, i))
			}
			if other, dup := names[n.Name]; dup {
				errs = append(errs, fmt.Errorf("%s %q: name %q already used by %q", n.Type, n.ID, n.Name, other))
			} else {
				names[n.Name] = n.ID
			}
			if n.Type == TypeChannel && n.ChannelRef != "" {
				if other, dup := refs[n.ChannelRef]; dup {
					errs = append(errs, fmt.Errorf("channel %q: channelRef %q already linked to %q", n.ID, n.ChannelRef, other))
				} else {
					refs[n.ChannelRef] = n.ID
				}
			}
			check(n, n.Children)
		}
	}
	check(nil, t.roots)
	return errors.Join(errs...)
}
