package tree

// Spec is a compact literal form for building trees in tests and fixtures:
// "channel A", "playlist P", "bucket b". IDs default to the name.
type Spec struct {
	ID       string
	Type     NodeType
	Name     string
	Children []Spec
}

func Channel(name string, kids ...Spec) Spec  { return Spec{Type: TypeChannel, Name: name, Children: kids} }
func Playlist(name string, kids ...Spec) Spec { return Spec{Type: TypePlaylist, Name: name, Children: kids} }
func Bucket(name string) Spec                 { return Spec{Type: TypeBucket, Name: name} }

// WithID overrides the id derived from the name.
func (s Spec) WithID(id string) Spec {
	s.ID = id
	return s
}

// Build turns specs into a consistent tree: parent links and orders are
// derived from nesting.
func Build(specs ...Spec) *Tree {
	var mk func(s Spec, parentID string, order int) *Node
	mk = func(s Spec, parentID string, order int) *Node {
		id := s.ID
		if id == "" {
			id = s.Name
		}
		n := &Node{ID: id, Type: s.Type, Name: s.Name, Order: order, ParentID: parentID, Active: true}
		for i, k := range s.Children {
			n.Children = append(n.Children, mk(k, id, i))
		}
		return n
	}
	roots := make([]*Node, len(specs))
	for i, s := range specs {
		roots[i] = mk(s, "", i)
	}
	return New(roots)
}
