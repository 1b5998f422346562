package tree

import "errors"

// Validation failures shared by the drop resolver and the mutation engine.
// They are returned before any tree change or persistence call.
var (
	ErrNotFound       = errors.New("node not found")
	ErrIncompatible   = errors.New("incompatible node types")
	ErrDropIntoSelf   = errors.New("cannot place a node inside its own subtree")
	ErrMixedTypes     = errors.New("selection mixes node types")
	ErrEmptySelection = errors.New("nothing selected")
	ErrInvalidName    = errors.New("name must not be empty")
	ErrChannelRefUsed = errors.New("channel definition already linked to another channel")
)
