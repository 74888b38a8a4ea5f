package model

import (
	"errors"
	"testing"

	"github.com/ivlev/anim8/internal/ident"
)

func TestInitial(t *testing.T) {
	s := Initial(800, 600, ident.Sequence("id"))

	if len(s.Animation.Frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(s.Animation.Frames))
	}
	f := s.Animation.Frames[0]
	if f.Name != "Frame 1" || len(f.Layers) != 1 || f.Layers[0].Name != "Layer 1" {
		t.Errorf("Unexpected seed frame: %+v", f)
	}
	if s.CurrentFrameID != f.ID || s.CurrentLayerID != f.Layers[0].ID {
		t.Errorf("Current selection should point at the seed frame/layer: %s/%s", s.CurrentFrameID, s.CurrentLayerID)
	}
	if s.SelectedTool != ToolBrush || s.BrushColor != DefaultBrushColor || s.BrushSize != DefaultBrushSize {
		t.Errorf("Unexpected brush defaults: %s %s %d", s.SelectedTool, s.BrushColor, s.BrushSize)
	}
	if s.FPS != DefaultFPS || s.Playing || !s.OnionSkinning {
		t.Errorf("Unexpected playback defaults: fps=%d playing=%v onion=%v", s.FPS, s.Playing, s.OnionSkinning)
	}
	if err := Validate(s); err != nil {
		t.Errorf("Initial state should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Initial(10, 10, ident.Sequence("id"))

	tests := []struct {
		name   string
		mutate func(s *State)
	}{
		{"no frames", func(s *State) { s.Animation.Frames = nil }},
		{"zero size", func(s *State) { s.Animation.Width = 0 }},
		{"dangling frame", func(s *State) { s.CurrentFrameID = "missing" }},
		{"foreign layer", func(s *State) { s.CurrentLayerID = "missing" }},
		{"duplicate layer", func(s *State) {
			f := s.Animation.Frames[0]
			s.Animation.Frames = append(s.Animation.Frames, Frame{ID: "other", Layers: f.Layers})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.Animation.Frames = append([]Frame(nil), base.Animation.Frames...)
			tt.mutate(&s)
			if err := Validate(s); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestRepair(t *testing.T) {
	s := Initial(10, 10, ident.Sequence("id"))
	s.CurrentFrameID = "gone"
	s.CurrentLayerID = "gone"

	r := Repair(s)
	f := r.Animation.Frames[0]
	if r.CurrentFrameID != f.ID || r.CurrentLayerID != f.Layers[0].ID {
		t.Errorf("Repair should select the first frame and layer, got %s/%s", r.CurrentFrameID, r.CurrentLayerID)
	}
	if err := Validate(r); err != nil {
		t.Errorf("Repaired state should validate: %v", err)
	}
}

func TestSameFrame(t *testing.T) {
	f := Frame{ID: "f", Name: "Frame", Layers: []Layer{NewLayer("a", "A")}}
	copied := f
	if !SameFrame(f, copied) {
		t.Error("A copied frame value sharing layers should be the same")
	}

	rebuilt := Frame{ID: f.ID, Name: f.Name, Layers: append([]Layer(nil), f.Layers...)}
	if SameFrame(f, rebuilt) {
		t.Error("A rebuilt layer slice should be reported as changed")
	}
}

func TestLayerIDs(t *testing.T) {
	a := Animation{Frames: []Frame{
		{ID: "f1", Layers: []Layer{{ID: "a"}, {ID: "b"}}},
		{ID: "f2", Layers: []Layer{{ID: "c"}}},
	}}
	got := a.LayerIDs()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}
