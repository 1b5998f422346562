package schedule

import (
	"context"

	"github.com/stretchr/testify/mock"

	"channel-scheduler/internal/tree"
)

type MockNodeStore struct {
	mock.Mock
}

func (m *MockNodeStore) ListNodes(ctx context.Context) ([]tree.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tree.Node), args.Error(1)
}

func (m *MockNodeStore) CreateNode(ctx context.Context, n tree.Node) (tree.Node, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(tree.Node), args.Error(1)
}

func (m *MockNodeStore) UpdateNode(ctx context.Context, id string, p tree.Patch) (tree.Node, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(tree.Node), args.Error(1)
}

func (m *MockNodeStore) DeleteNodes(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}
