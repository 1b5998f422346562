package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-scheduler/internal/dropzone"
	"channel-scheduler/internal/syncer"
	"channel-scheduler/internal/tree"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// store counts refetches and can hold updates until released.
type store struct {
	*syncer.MemoryStore
	fetches atomic.Int32
	gate    chan struct{}
}

func (s *store) FetchAll(ctx context.Context) ([]tree.Node, error) {
	s.fetches.Add(1)
	return s.MemoryStore.FetchAll(ctx)
}

func (s *store) Update(ctx context.Context, id string, p tree.Patch) error {
	if s.gate != nil {
		<-s.gate
	}
	return s.MemoryStore.Update(ctx, id, p)
}

func seed() *tree.Tree {
	return tree.Build(
		tree.Channel("A",
			tree.Playlist("A1", tree.Bucket("a1x"), tree.Bucket("a1y")),
			tree.Playlist("P"),
		),
		tree.Channel("B",
			tree.Playlist("B1", tree.Bucket("b1x"), tree.Bucket("b1y")),
			tree.Playlist("B2"),
		),
	)
}

func newSession(t *testing.T, opts Options) (*Session, *store, *clock) {
	t.Helper()
	st := &store{MemoryStore: syncer.NewMemoryStore(seed().Flatten()...)}
	clk := newClock()
	if opts.Now == nil {
		opts.Now = clk.Now
	}
	s := New(syncer.New(st), opts)
	require.NoError(t, s.Load(context.Background()))
	s.SetView(dropzone.NewGrid(s.Tree(), 10))
	t.Cleanup(s.Close)
	return s, st, clk
}

func TestSession_DragCommitsOnce(t *testing.T) {
	ctx := context.Background()
	s, st, clk := newSession(t, Options{})
	before := s.Tree()

	require.NoError(t, s.OnDragStart([]string{"P"}))
	assert.Equal(t, StateDragging, s.State())

	for _, y := range []float64{44, 58, 63, 71} {
		_, err := s.OnDragMove("b1x", y)
		require.NoError(t, err)
	}
	tg, err := s.OnDragMove("b1x", 71)
	require.NoError(t, err)
	assert.True(t, tg.Redirected)
	assert.Same(t, before, s.Tree(), "pointer moves never touch the tree")
	assert.Equal(t, int32(1), st.fetches.Load())

	// Above the first bucket of B's first playlist: P stays at the end of A.
	out, err := s.OnDragEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out, "P already is the last playlist of A")

	require.NoError(t, s.OnDragStart([]string{"A1"}))
	_, err = s.OnDragMove("b1x", 76)
	require.NoError(t, err)
	out, err = s.OnDragEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.Equal(t, StateIdle, s.State())

	p, _ := s.Tree().Find("A1")
	assert.Equal(t, "B", p.ParentID)
	assert.Equal(t, 1, p.Order)

	out, err = s.OnDragEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, out, "duplicate end inside the cooldown")

	clk.Advance(DefaultCooldown)
	out, err = s.OnDragEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out)

	nodes, err := st.MemoryStore.FetchAll(ctx)
	require.NoError(t, err)
	stored, _ := tree.FromFlat(nodes)
	assert.Equal(t, s.Tree().Flatten(), stored.Flatten())
}

func TestSession_InvalidDropDoesNothing(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSession(t, Options{})
	before := s.Tree()

	_, err := s.OnDragMove("A", 1)
	assert.ErrorIs(t, err, ErrNotDragging)

	require.NoError(t, s.OnDragStart([]string{"A"}))
	_, err = s.OnDragMove("B", 55)
	require.NoError(t, err)
	_, err = s.OnDragMove("a1x", 25)
	assert.ErrorIs(t, err, tree.ErrDropIntoSelf)

	out, err := s.OnDragEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out, "last move was invalid")
	assert.Same(t, before, s.Tree())

	assert.ErrorIs(t, s.OnDragStart([]string{"P", "a1x"}), tree.ErrMixedTypes)

	require.NoError(t, s.OnDragStart([]string{"P"}))
	s.OnDragCancel()
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_SuppressedWhileCommitting(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newSession(t, Options{})
	st.gate = make(chan struct{})

	require.NoError(t, s.OnDragStart([]string{"B2"}))
	_, err := s.OnDragMove("B1", 61)
	require.NoError(t, err)

	done := make(chan Outcome)
	go func() {
		out, err := s.OnDragEnd(ctx)
		assert.NoError(t, err)
		done <- out
	}()
	// The optimistic tree is visible before the store answers.
	require.Eventually(t, func() bool {
		b2, _ := s.Tree().Find("B2")
		return b2.Order == 0
	}, time.Second, time.Millisecond)
	assert.Equal(t, StateCommitting, s.State())

	out, err := s.OnDragEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, out)
	out, err = s.DeleteSelected(ctx, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, out)
	assert.ErrorIs(t, s.OnDragStart([]string{"P"}), ErrBusy)

	close(st.gate)
	assert.Equal(t, OutcomeApplied, <-done)
	assert.Equal(t, 10, s.Tree().Len())
}

func TestSession_ClipboardAndCommands(t *testing.T) {
	ctx := context.Background()
	s, st, clk := newSession(t, Options{})
	step := func() { clk.Advance(time.Second) }

	out, err := s.Paste(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out, "empty clipboard")

	require.NoError(t, s.Cut("A1"))
	out, err = s.Paste(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.Nil(t, s.Clip(), "a cut pastes once")
	_, ok := s.Tree().Find("A1")
	assert.False(t, ok)
	assert.Equal(t, []string{"B1", "B2", "A1"}, names(s.Tree(), "B"))
	step()

	require.NoError(t, s.Copy("B1"))
	out, err = s.Paste(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.NotNil(t, s.Clip(), "copies can be pasted again")
	assert.Equal(t, []string{"B1", "B1 (2)", "B2", "A1"}, names(s.Tree(), "B"))
	step()

	id, out, err := s.AddChild(ctx, "A", tree.Node{Name: "Late"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	n, ok := s.Tree().Find(id)
	require.True(t, ok, "the store id is in the tree")
	assert.Equal(t, "Late", n.Name)
	step()

	_, err = s.Duplicate(ctx, "B2")
	require.NoError(t, err)
	step()
	_, err = s.Rename(ctx, "B2", "Finale")
	require.NoError(t, err)
	step()
	_, err = s.SetActive(ctx, []string{"B2"}, false)
	require.NoError(t, err)
	step()
	_, err = s.SetSchedule(ctx, "B2", "sat 20:00")
	require.NoError(t, err)
	step()

	b2, _ := s.Tree().Find("B2")
	assert.Equal(t, "Finale", b2.Name)
	assert.False(t, b2.Active)
	assert.Equal(t, "sat 20:00", b2.Schedule)

	out, err = s.DeleteSelected(ctx, []string{"B", "b1x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.Equal(t, []string{"A"}, names(s.Tree(), ""))

	nodes, _ := st.MemoryStore.FetchAll(ctx)
	assert.Len(t, nodes, s.Tree().Len())
}

func TestSession_FailureRefreshes(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newSession(t, Options{})
	st.FailOn = func(method string, n tree.Node) error {
		if method == "update" {
			return errors.New("read-only")
		}
		return nil
	}

	out, err := s.Rename(ctx, "P", "Prime")
	assert.Equal(t, OutcomeApplied, out)
	var syncErr *syncer.SyncError
	require.ErrorAs(t, err, &syncErr)

	p, _ := s.Tree().Find("P")
	assert.Equal(t, "P", p.Name, "store state wins")
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_ExternalChangesAreDebounced(t *testing.T) {
	s, st, _ := newSession(t, Options{Debounce: 20 * time.Millisecond})
	loaded := st.fetches.Load()

	for i := 0; i < 5; i++ {
		s.NotifyExternalChange()
	}
	require.Eventually(t, func() bool { return st.fetches.Load() == loaded+1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, loaded+1, st.fetches.Load(), "one refresh per burst")
}

func TestSession_ExternalRefreshWaitsForCooldown(t *testing.T) {
	ctx := context.Background()
	s, st, clk := newSession(t, Options{Debounce: 10 * time.Millisecond, Cooldown: 40 * time.Millisecond})

	_, err := s.Rename(ctx, "P", "Prime")
	require.NoError(t, err)
	loaded := st.fetches.Load()

	s.NotifyExternalChange()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, loaded, st.fetches.Load(), "deferred while the fake clock sits inside the cooldown")

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return st.fetches.Load() == loaded+1 }, time.Second, 5*time.Millisecond)
}

func TestSession_CloseStopsRefreshes(t *testing.T) {
	s, st, _ := newSession(t, Options{Debounce: 10 * time.Millisecond})
	loaded := st.fetches.Load()

	s.NotifyExternalChange()
	s.Close()
	s.NotifyExternalChange()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, loaded, st.fetches.Load())
}

func names(t *tree.Tree, parentID string) []string {
	var out []string
	for _, n := range t.Children(parentID) {
		out = append(out, n.Name)
	}
	return out
}
