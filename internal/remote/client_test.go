package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/schedule"
	"channel-scheduler/internal/syncer"
	"channel-scheduler/internal/tree"
)

// memNodes serves the node API from a MemoryStore.
type memNodes struct {
	m *syncer.MemoryStore
}

func (s memNodes) find(ctx context.Context, id string) (tree.Node, error) {
	nodes, err := s.m.FetchAll(ctx)
	if err != nil {
		return tree.Node{}, err
	}
	for _, n := range nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return tree.Node{}, schedule.ErrNotFound
}

func (s memNodes) ListNodes(ctx context.Context) ([]tree.Node, error) { return s.m.FetchAll(ctx) }

func (s memNodes) CreateNode(ctx context.Context, n tree.Node) (tree.Node, error) {
	id, err := s.m.Create(ctx, n)
	if err != nil {
		return tree.Node{}, schedule.ErrNotFound
	}
	return s.find(ctx, id)
}

func (s memNodes) UpdateNode(ctx context.Context, id string, p tree.Patch) (tree.Node, error) {
	if err := s.m.Update(ctx, id, p); err != nil {
		return tree.Node{}, schedule.ErrNotFound
	}
	return s.find(ctx, id)
}

func (s memNodes) DeleteNodes(ctx context.Context, ids []string) (int64, error) {
	before := s.m.Len()
	err := s.m.BatchDelete(ctx, ids)
	return int64(before - s.m.Len()), err
}

func TestClient_StatusError(t *testing.T) {
	var gotID string
	r := chi.NewRouter()
	r.Patch("/nodes/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"channel reference already in use"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := New(srv.URL + "/")
	ref := "def-1"
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	err := c.Update(ctx, "c1", tree.Patch{ChannelRef: &ref})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "channel reference already in use", se.Msg)
	assert.Equal(t, "req-42", gotID)

	_, err = c.FetchAll(context.Background())
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

// Edits dispatched through the client end up in the store behind the node
// API, and a refetch reproduces the local tree.
func TestClient_SyncsThroughNodeAPI(t *testing.T) {
	ctx := context.Background()
	mem := syncer.NewMemoryStore(tree.Build(
		tree.Channel("News",
			tree.Playlist("Morning", tree.Bucket("Headlines"), tree.Bucket("Weather")),
			tree.Playlist("Evening"),
		),
		tree.Channel("Sports"),
	).Flatten()...)
	srv := httptest.NewServer(schedule.NewServer(memNodes{mem}, nil, "").Router(middleware.RequestID))
	defer srv.Close()

	sy := syncer.New(New(srv.URL, WithHTTPClient(srv.Client())))
	_, err := sy.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, sy.Tree().Len())

	e := mutate.New()
	apply := func(res mutate.Result, err error) {
		t.Helper()
		require.NoError(t, err)
		sy.Commit(res.Tree)
		_, err = sy.Dispatch(ctx, res.Ops)
		require.NoError(t, err)
	}

	apply(e.Move(sy.Tree(), mutate.MoveRequest{IDs: []string{"Evening"}, ParentID: "Sports", Index: 0}))
	clip, err := mutate.Copy(sy.Tree(), "Morning")
	require.NoError(t, err)
	apply(e.Paste(sy.Tree(), mutate.PasteRequest{Clip: clip, TargetID: "Morning"}))
	apply(e.Delete(sy.Tree(), []string{"Weather"}))

	local := sy.Tree().Flatten()
	for _, n := range local {
		assert.False(t, mutate.IsProvisional(n.ID), n.Name)
	}
	applied, err := sy.Reconcile(ctx)
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, local, sy.Tree().Flatten())
	assert.Equal(t, []string{"Morning", "Morning (2)"}, childNames(sy.Tree(), "News"))
}

func childNames(t *tree.Tree, parentID string) []string {
	var out []string
	for _, n := range t.Children(parentID) {
		out = append(out, n.Name)
	}
	return out
}
