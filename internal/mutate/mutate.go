// Package mutate is the pure reducer over schedule trees: every operation
// takes a snapshot, returns a new snapshot and the store operations that
// bring the persisted forest to the same state. Input trees are never
// modified.
package mutate

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"channel-scheduler/internal/tree"
)

type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Phase orders dispatch. Ops of one phase are finished before the next phase
// starts; updates inside a phase may run concurrently.
type Phase int

const (
	PhasePrepare Phase = iota
	PhaseCreate
	PhaseDelete
	PhaseFinalize
)

func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "prepare"
	case PhaseCreate:
		return "create"
	case PhaseDelete:
		return "delete"
	case PhaseFinalize:
		return "finalize"
	}
	return "unknown"
}

// Op is one call against the persistence collaborator.
//
// Create ops carry the full node with a provisional ID; its ParentID may be
// provisional too when the parent is created by an earlier op of the same
// result. Update ops may address provisional ids created earlier.
type Op struct {
	Kind  Kind
	Phase Phase
	ID    string
	Node  tree.Node
	Patch tree.Patch
	IDs   []string
}

type Result struct {
	Tree    *tree.Tree
	Ops     []Op
	Created []string // provisional ids, parents first
}

// Noop reports whether the operation changed nothing.
func (r Result) Noop() bool { return len(r.Ops) == 0 }

// ProvisionalPrefix marks ids minted locally for nodes the store has not
// created yet.
const ProvisionalPrefix = "pending:"

func IsProvisional(id string) bool { return strings.HasPrefix(id, ProvisionalPrefix) }

// Engine mints provisional ids. The zero value is ready to use and safe for
// concurrent use.
type Engine struct {
	seq atomic.Uint64
}

func New() *Engine { return &Engine{} }

func (e *Engine) provisional() string {
	return ProvisionalPrefix + strconv.FormatUint(e.seq.Add(1), 10)
}

// diff lists the ops that turn before into after: a create for every node
// only after has, an update in phase for every node whose persisted fields
// changed. Nodes only before has are not reported; deletes are explicit.
func diff(before, after *tree.Tree, phase Phase) []Op {
	var ops []Op
	after.Walk(func(n *tree.Node, _ int) bool {
		old, ok := before.Find(n.ID)
		if !ok {
			ops = append(ops, Op{Kind: KindCreate, Phase: PhaseCreate, ID: n.ID, Node: n.Fields()})
			return true
		}
		if p := tree.Diff(old.Fields(), n.Fields()); !p.Empty() {
			ops = append(ops, Op{Kind: KindUpdate, Phase: phase, ID: n.ID, Patch: p})
		}
		return true
	})
	return ops
}

func finish(t *tree.Tree, ops []Op) Result {
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Phase < ops[j].Phase })
	r := Result{Tree: t, Ops: ops}
	for _, op := range ops {
		if op.Kind == KindCreate {
			r.Created = append(r.Created, op.ID)
		}
	}
	return r
}

func unchanged(t *tree.Tree) Result { return Result{Tree: t} }
