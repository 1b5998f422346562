package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"channel-scheduler/internal/tree"
)

func newTestServer(t *testing.T) (*MockNodeStore, http.Handler) {
	t.Helper()
	store := new(MockNodeStore)
	return store, NewServer(store, nil, "").Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	_, h := newTestServer(t)
	w := do(h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "schedule-service")
}

func TestHandleListNodes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, h := newTestServer(t)
		store.On("ListNodes", mock.Anything).Return([]tree.Node{
			{ID: "c1", Type: tree.TypeChannel, Name: "News", Active: true},
			{ID: "p1", Type: tree.TypePlaylist, Name: "Morning", ParentID: "c1", Active: true},
		}, nil)

		w := do(h, "GET", "/nodes", "")
		require.Equal(t, http.StatusOK, w.Code)

		var nodes []tree.Node
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
		assert.Len(t, nodes, 2)
		assert.Equal(t, "c1", nodes[1].ParentID)
	})

	t.Run("StoreError", func(t *testing.T) {
		store, h := newTestServer(t)
		store.On("ListNodes", mock.Anything).Return(nil, errors.New("boom"))

		w := do(h, "GET", "/nodes", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database error")
	})
}

func TestHandleCreateNode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, h := newTestServer(t)
		in := tree.Node{Type: tree.TypePlaylist, Name: "Morning", ParentID: "c1", Order: 2, Active: true}
		out := in
		out.ID = "p9"
		store.On("CreateNode", mock.Anything, in).Return(out, nil)

		w := do(h, "POST", "/nodes", `{"type":"playlist","name":"  Morning ","parentId":"c1","order":2,"active":true}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var got tree.Node
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "p9", got.ID)
		store.AssertExpectations(t)
	})

	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"InvalidJSON", `{`, nil, http.StatusBadRequest, "invalid JSON body"},
		{"InvalidType", `{"type":"folder","name":"x"}`, nil, http.StatusBadRequest, "invalid type"},
		{"EmptyName", `{"type":"channel","name":"   "}`, nil, http.StatusBadRequest, "name must be"},
		{"LongName", `{"type":"channel","name":"` + strings.Repeat("n", 201) + `"}`, nil, http.StatusBadRequest, "name must be"},
		{"NegativeOrder", `{"type":"channel","name":"x","order":-1}`, nil, http.StatusBadRequest, "order"},
		{"WrongParent", `{"type":"bucket","name":"x","parentId":"c1"}`, ErrInvalidParent, http.StatusBadRequest, "parent"},
		{"UnknownParent", `{"type":"bucket","name":"x","parentId":"p0"}`, ErrNotFound, http.StatusNotFound, "not found"},
		{"ChannelRefTaken", `{"type":"channel","name":"x","channelRef":"def-1"}`, ErrConflict, http.StatusConflict, "already in use"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, h := newTestServer(t)
			if tt.err != nil {
				store.On("CreateNode", mock.Anything, mock.Anything).Return(tree.Node{}, tt.err)
			}
			w := do(h, "POST", "/nodes", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.msg)
			if tt.err == nil {
				store.AssertNotCalled(t, "CreateNode", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandlePatchNode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, h := newTestServer(t)
		store.On("UpdateNode", mock.Anything, "p1", mock.MatchedBy(func(p tree.Patch) bool {
			return p.Name != nil && *p.Name == "Late" && p.Order != nil && *p.Order == 0 && p.Active == nil
		})).Return(tree.Node{ID: "p1", Type: tree.TypePlaylist, Name: "Late"}, nil)

		w := do(h, "PATCH", "/nodes/p1", `{"name":" Late ","order":0}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Late"`)
		store.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		store, h := newTestServer(t)
		store.On("UpdateNode", mock.Anything, "nope", mock.Anything).Return(tree.Node{}, ErrNotFound)

		w := do(h, "PATCH", "/nodes/nope", `{"active":false}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BlankName", func(t *testing.T) {
		store, h := newTestServer(t)
		w := do(h, "PATCH", "/nodes/p1", `{"name":""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "UpdateNode", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleBatchDelete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, h := newTestServer(t)
		store.On("DeleteNodes", mock.Anything, []string{"c1", "b2"}).Return(int64(2), nil)

		w := do(h, "POST", "/nodes/batch-delete", `{"ids":["c1","b2"]}`)
		assert.Equal(t, http.StatusNoContent, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("Empty", func(t *testing.T) {
		store, h := newTestServer(t)
		w := do(h, "POST", "/nodes/batch-delete", `{"ids":[]}`)
		assert.Equal(t, http.StatusNoContent, w.Code)
		store.AssertNotCalled(t, "DeleteNodes", mock.Anything, mock.Anything)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, h := newTestServer(t)
		w := do(h, "POST", "/nodes/batch-delete", `[]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWritesArePublished(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub := rdb.Subscribe(ctx, "schedule-events")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)
	msgs := sub.Channel()

	store := new(MockNodeStore)
	h := NewServer(store, rdb, "schedule-events").Router()
	store.On("CreateNode", mock.Anything, mock.Anything).Return(tree.Node{ID: "c1", Type: tree.TypeChannel, Name: "News"}, nil)
	store.On("DeleteNodes", mock.Anything, []string{"c1"}).Return(int64(1), nil)
	store.On("DeleteNodes", mock.Anything, []string{"gone"}).Return(int64(0), nil)

	next := func() map[string]any {
		select {
		case m := <-msgs:
			var ev map[string]any
			require.NoError(t, json.Unmarshal([]byte(m.Payload), &ev))
			return ev
		case <-ctx.Done():
			t.Fatal("no event published")
			return nil
		}
	}

	require.Equal(t, http.StatusCreated, do(h, "POST", "/nodes", `{"type":"channel","name":"News"}`).Code)
	ev := next()
	assert.Equal(t, EventNodeCreated, ev["type"])

	require.Equal(t, http.StatusNoContent, do(h, "POST", "/nodes/batch-delete", `{"ids":["gone"]}`).Code)
	require.Equal(t, http.StatusNoContent, do(h, "POST", "/nodes/batch-delete", `{"ids":["c1"]}`).Code)
	ev = next()
	assert.Equal(t, EventNodesDeleted, ev["type"], "deleting nothing is not announced")
	assert.Equal(t, []any{"c1"}, ev["payload"].(map[string]any)["ids"])
}
