// Package editor drives one editing session: it turns gestures and clipboard
// commands into mutations, publishes the optimistic tree, dispatches the
// store ops and keeps external refreshes from fighting local commits.
package editor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"channel-scheduler/internal/dropzone"
	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/syncer"
	"channel-scheduler/internal/tree"
)

var (
	ErrBusy        = errors.New("editor: a change is being committed")
	ErrNotDragging = errors.New("editor: no drag in progress")
	ErrNoView      = errors.New("editor: no view attached")
)

// State is the gesture state: idle -> dragging -> committing -> idle.
// Non-drag commands go straight from idle to committing.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateCommitting:
		return "committing"
	}
	return "idle"
}

// Outcome tells a caller what happened to a command that did not fail.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNoop
	OutcomeSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeSuppressed:
		return "suppressed"
	}
	return "noop"
}

const (
	DefaultCooldown       = 400 * time.Millisecond
	DefaultDebounce       = 250 * time.Millisecond
	defaultRefreshTimeout = 15 * time.Second
)

type Options struct {
	// Cooldown is measured from the start of the last commit. Commands and
	// external refreshes arriving inside it are suppressed or deferred.
	Cooldown time.Duration
	// Debounce coalesces bursts of external change notifications.
	Debounce time.Duration
	Now      func() time.Time
	View     dropzone.View
}

type Session struct {
	engine *mutate.Engine
	sy     *syncer.Syncer
	opts   Options

	mu         sync.Mutex
	state      State
	lastCommit time.Time
	view       dropzone.View
	drag       []string
	target     *dropzone.Target
	clip       *mutate.Clip

	refreshTimer   *time.Timer
	refreshPending bool
	closed         bool
}

func New(sy *syncer.Syncer, opts Options) *Session {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{engine: mutate.New(), sy: sy, opts: opts, view: opts.View}
}

// Load replaces the tree with the store's current state.
func (s *Session) Load(ctx context.Context) error {
	_, err := s.sy.Reconcile(ctx)
	return err
}

func (s *Session) Tree() *tree.Tree { return s.sy.Tree() }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetView swaps the row bounds provider, e.g. after the view re-rendered.
func (s *Session) SetView(v dropzone.View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

func (s *Session) inCooldown() bool {
	return !s.lastCommit.IsZero() && s.opts.Now().Sub(s.lastCommit) < s.opts.Cooldown
}

// begin moves the session into committing. It reports false when a commit
// is running or the cooldown has not elapsed.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateCommitting || s.inCooldown() {
		return false
	}
	s.state = StateCommitting
	s.drag, s.target = nil, nil
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// commit runs one mutation through the engine, publishes it and dispatches
// its ops. It must be called between begin and end.
func (s *Session) commit(ctx context.Context, fn func(*tree.Tree) (mutate.Result, error)) (mutate.Result, syncer.Report, Outcome, error) {
	res, err := fn(s.sy.Tree())
	if err != nil {
		return res, syncer.Report{}, OutcomeNoop, err
	}
	if res.Noop() {
		return res, syncer.Report{}, OutcomeNoop, nil
	}
	s.mu.Lock()
	s.lastCommit = s.opts.Now()
	s.mu.Unlock()

	s.sy.Commit(res.Tree)
	rep, err := s.sy.Dispatch(ctx, res.Ops)
	return res, rep, OutcomeApplied, err
}

func (s *Session) run(ctx context.Context, fn func(*tree.Tree) (mutate.Result, error)) (Outcome, error) {
	if !s.begin() {
		return OutcomeSuppressed, nil
	}
	defer s.end()
	_, _, out, err := s.commit(ctx, fn)
	return out, err
}

// Refresh refetches the tree now. applied is false when a newer refresh or
// commit overtook it.
func (s *Session) Refresh(ctx context.Context) (applied bool, err error) {
	return s.sy.Reconcile(ctx)
}

// NotifyExternalChange schedules a refresh after the debounce delay. Bursts
// collapse into one refresh, and a refresh due while a commit is running or
// cooling down is postponed until it is over.
func (s *Session) NotifyExternalChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.refreshPending = true
	if s.refreshTimer == nil {
		s.refreshTimer = time.AfterFunc(s.opts.Debounce, s.flushRefresh)
	}
}

func (s *Session) flushRefresh() {
	s.mu.Lock()
	s.refreshTimer = nil
	if s.closed || !s.refreshPending {
		s.mu.Unlock()
		return
	}
	if s.state == StateCommitting || s.inCooldown() {
		wait := s.opts.Debounce
		if s.state != StateCommitting {
			wait = s.opts.Cooldown - s.opts.Now().Sub(s.lastCommit)
		}
		s.refreshTimer = time.AfterFunc(wait, s.flushRefresh)
		s.mu.Unlock()
		return
	}
	s.refreshPending = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRefreshTimeout)
	defer cancel()
	if _, err := s.sy.Reconcile(ctx); err != nil {
		log.Printf("editor: external refresh: %v", err)
	}
}

// Close stops pending refreshes. Later notifications are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
}
