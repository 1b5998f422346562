package editor

import (
	"context"

	"channel-scheduler/internal/dropzone"
	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/tree"
)

// OnDragStart begins a drag of ids; ids[0] is the row the pointer grabbed.
func (s *Session) OnDragStart(ids []string) error {
	if _, err := s.sy.Tree().Independent(ids); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCommitting {
		return ErrBusy
	}
	s.state = StateDragging
	s.drag = append([]string(nil), ids...)
	s.target = nil
	return nil
}

// OnDragMove resolves the landing spot for the pointer at height y over the
// row of overID. It only updates the remembered target; an invalid spot
// clears it so a drop there does nothing.
func (s *Session) OnDragMove(overID string, y float64) (dropzone.Target, error) {
	s.mu.Lock()
	if s.state != StateDragging {
		s.mu.Unlock()
		return dropzone.Target{}, ErrNotDragging
	}
	if s.view == nil {
		s.mu.Unlock()
		return dropzone.Target{}, ErrNoView
	}
	drag, view := s.drag, s.view
	s.mu.Unlock()

	tg, err := dropzone.Resolve(s.sy.Tree(), view, drag, overID, y)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging {
		return tg, err
	}
	if err != nil {
		s.target = nil
		return dropzone.Target{}, err
	}
	s.target = &tg
	return tg, nil
}

// OnDragCancel abandons the drag without committing.
func (s *Session) OnDragCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDragging {
		s.state = StateIdle
		s.drag, s.target = nil, nil
	}
}

// OnDragEnd commits the last resolved target. A second end event for the
// same gesture arrives while committing or inside the cooldown and is
// suppressed.
func (s *Session) OnDragEnd(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	switch {
	case s.state == StateCommitting:
		s.mu.Unlock()
		return OutcomeSuppressed, nil
	case s.inCooldown():
		if s.state == StateDragging {
			s.state = StateIdle
			s.drag, s.target = nil, nil
		}
		s.mu.Unlock()
		return OutcomeSuppressed, nil
	case s.state != StateDragging:
		s.mu.Unlock()
		return OutcomeNoop, nil
	case s.target == nil:
		s.state = StateIdle
		s.drag = nil
		s.mu.Unlock()
		return OutcomeNoop, nil
	}
	drag, tg := s.drag, *s.target
	s.state = StateCommitting
	s.drag, s.target = nil, nil
	s.mu.Unlock()
	defer s.end()

	_, _, out, err := s.commit(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.Move(t, mutate.MoveRequest{IDs: drag, ParentID: tg.ParentID, Index: tg.Index})
	})
	return out, err
}
