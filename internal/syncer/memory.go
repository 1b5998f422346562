package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"channel-scheduler/internal/tree"
)

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownParent = errors.New("parent does not exist")
)

// MemoryStore is an in-process Store. Deletes cascade like the Postgres
// schema does. FailOn, when set, is consulted before every call and its
// error is returned instead of performing the call.
type MemoryStore struct {
	mu     sync.Mutex
	nodes  map[string]tree.Node
	FailOn func(method string, n tree.Node) error
}

func NewMemoryStore(nodes ...tree.Node) *MemoryStore {
	m := &MemoryStore{nodes: map[string]tree.Node{}}
	for _, n := range nodes {
		n.Children = nil
		m.nodes[n.ID] = n
	}
	return m
}

func (m *MemoryStore) fail(method string, n tree.Node) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(method, n)
}

func (m *MemoryStore) Create(_ context.Context, n tree.Node) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("create", n); err != nil {
		return "", err
	}
	if n.ParentID != "" {
		if _, ok := m.nodes[n.ParentID]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownParent, n.ParentID)
		}
	}
	n.ID = uuid.NewString()
	n.Children = nil
	m.nodes[n.ID] = n
	return n.ID, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, p tree.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	n.ID = id
	if err := m.fail("update", n); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	p.Apply(&n)
	m.nodes[id] = n
	return nil
}

func (m *MemoryStore) BatchDelete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		n := m.nodes[id]
		n.ID = id
		if err := m.fail("delete", n); err != nil {
			return err
		}
	}
	doomed := map[string]bool{}
	for _, id := range ids {
		doomed[id] = true
	}
	// Cascade until no survivor points at a doomed parent.
	for grew := true; grew; {
		grew = false
		for id, n := range m.nodes {
			if !doomed[id] && doomed[n.ParentID] {
				doomed[id] = true
				grew = true
			}
		}
	}
	for id := range doomed {
		delete(m.nodes, id)
	}
	return nil
}

func (m *MemoryStore) FetchAll(context.Context) ([]tree.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("fetch", tree.Node{}); err != nil {
		return nil, err
	}
	out := make([]tree.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentID != out[j].ParentID {
			return out[i].ParentID < out[j].ParentID
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len reports the number of stored nodes.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}
