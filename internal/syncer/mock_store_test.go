package syncer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"channel-scheduler/internal/tree"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, n tree.Node) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, id string, p tree.Patch) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockStore) BatchDelete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockStore) FetchAll(ctx context.Context) ([]tree.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tree.Node), args.Error(1)
}
