package model

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a state that breaks a document invariant.
var ErrInvalid = errors.New("invalid document")

// Validate checks the document invariants. Used on loaded snapshots.
func Validate(s State) error {
	a := s.Animation
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, a.Width, a.Height)
	}
	if len(a.Frames) == 0 {
		return fmt.Errorf("%w: animation has no frames", ErrInvalid)
	}

	frames := make(map[string]bool, len(a.Frames))
	layers := make(map[string]bool)
	for _, f := range a.Frames {
		if frames[f.ID] {
			return fmt.Errorf("%w: duplicate frame id %q", ErrInvalid, f.ID)
		}
		frames[f.ID] = true
		for _, l := range f.Layers {
			if layers[l.ID] {
				return fmt.Errorf("%w: duplicate layer id %q", ErrInvalid, l.ID)
			}
			layers[l.ID] = true
		}
	}

	cur, ok := s.CurrentFrame()
	if !ok {
		return fmt.Errorf("%w: current frame %q not found", ErrInvalid, s.CurrentFrameID)
	}
	if s.CurrentLayerID != "" && cur.LayerIndex(s.CurrentLayerID) < 0 {
		return fmt.Errorf("%w: current layer %q not in frame %q", ErrInvalid, s.CurrentLayerID, cur.ID)
	}
	return nil
}

// Repair points the current frame and layer at existing entries when they
// dangle. Valid selections are left alone.
func Repair(s State) State {
	if len(s.Animation.Frames) == 0 {
		return s
	}
	cur, ok := s.CurrentFrame()
	if !ok {
		cur = s.Animation.Frames[0]
		s.CurrentFrameID = cur.ID
	}
	if cur.LayerIndex(s.CurrentLayerID) < 0 {
		s.CurrentLayerID = cur.FirstLayerID()
	}
	return s
}
