package editor

import (
	"context"

	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/tree"
)

// Copy puts a snapshot of id's subtree on the clipboard, replacing whatever
// was there.
func (s *Session) Copy(id string) error {
	clip, err := mutate.Copy(s.sy.Tree(), id)
	if err != nil {
		return err
	}
	s.setClip(clip)
	return nil
}

// Cut is Copy with the source removed by the next successful paste.
func (s *Session) Cut(id string) error {
	clip, err := mutate.Cut(s.sy.Tree(), id)
	if err != nil {
		return err
	}
	s.setClip(clip)
	return nil
}

func (s *Session) setClip(c *mutate.Clip) {
	s.mu.Lock()
	s.clip = c
	s.mu.Unlock()
}

// Clip returns the clipboard content, nil when empty.
func (s *Session) Clip() *mutate.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

// Paste recreates the clipboard next to targetID. An empty clipboard is a
// no-op. A cut is pasted once; the clipboard empties after it succeeded.
func (s *Session) Paste(ctx context.Context, targetID string) (Outcome, error) {
	return s.PasteRemapped(ctx, targetID, nil)
}

// PasteRemapped is Paste with bucket content retargeting for a channel pasted
// onto a channel. remap is keyed by source bucket id.
func (s *Session) PasteRemapped(ctx context.Context, targetID string, remap map[string]mutate.BucketRemap) (Outcome, error) {
	clip := s.Clip()
	if clip == nil {
		return OutcomeNoop, nil
	}
	out, err := s.run(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.Paste(t, mutate.PasteRequest{Clip: clip, TargetID: targetID, Remap: remap})
	})
	if err == nil && out == OutcomeApplied && clip.Cut {
		s.mu.Lock()
		if s.clip == clip {
			s.clip = nil
		}
		s.mu.Unlock()
	}
	return out, err
}

// DeleteSelected removes ids and everything below them.
func (s *Session) DeleteSelected(ctx context.Context, ids []string) (Outcome, error) {
	return s.run(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.Delete(t, ids)
	})
}

// AddChild creates n under parentID ("" for a channel) and returns the id the
// store assigned.
func (s *Session) AddChild(ctx context.Context, parentID string, n tree.Node) (string, Outcome, error) {
	if !s.begin() {
		return "", OutcomeSuppressed, nil
	}
	defer s.end()
	res, rep, out, err := s.commit(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.AddChild(t, parentID, n)
	})
	if err != nil || out != OutcomeApplied {
		return "", out, err
	}
	return rep.Created[res.Created[0]], out, nil
}

// Duplicate pastes a copy of id right after it without touching the
// clipboard.
func (s *Session) Duplicate(ctx context.Context, id string) (Outcome, error) {
	return s.run(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.Duplicate(t, id)
	})
}

func (s *Session) Rename(ctx context.Context, id, name string) (Outcome, error) {
	return s.run(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.Rename(t, id, name)
	})
}

func (s *Session) SetActive(ctx context.Context, ids []string, active bool) (Outcome, error) {
	return s.run(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.SetActive(t, ids, active)
	})
}

func (s *Session) SetSchedule(ctx context.Context, id, schedule string) (Outcome, error) {
	return s.run(ctx, func(t *tree.Tree) (mutate.Result, error) {
		return s.engine.SetSchedule(t, id, schedule)
	})
}
