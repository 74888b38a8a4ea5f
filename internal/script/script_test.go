package script

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/anim8/internal/canvas"
	"github.com/ivlev/anim8/internal/ident"
	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/studio"
)

func newRunner(w, h int) *Runner {
	s := studio.New(w, h, studio.WithEnv(studio.Env{NewID: ident.Sequence("r")}))
	return &Runner{Store: s, Canvas: canvas.New(s, nil)}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		steps int
	}{
		{"list", "- action: add_frame\n- action: toggle_playing\n", 2},
		{"document", "version: \"1\"\nsteps:\n  - action: add_frame\n", 1},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if len(s.Steps) != tt.steps {
				t.Errorf("Expected %d steps, got %d", tt.steps, len(s.Steps))
			}
		})
	}

	if _, err := Parse([]byte("steps: [")); err == nil {
		t.Error("Expected error for broken YAML")
	}
}

func TestReadScript(t *testing.T) {
	data := `version: "1"
steps:
  - action: add_layer
  - action: set_layer_visibility
    layer: "1"
    visible: false
  - action: stroke
    points: [[1, 2], [3, 4]]
`
	path := filepath.Join(t.TempDir(), "steps.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := ReadScript(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Steps) != 3 || out.Steps[1].Visible == nil || *out.Steps[1].Visible {
		t.Errorf("Unexpected steps: %+v", out.Steps)
	}
	if out.Steps[2].Points[1] != [2]float64{3, 4} {
		t.Errorf("Points = %v", out.Steps[2].Points)
	}

	if _, err := ReadScript(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunScenario(t *testing.T) {
	r := newRunner(20, 20)
	data := `
- action: rename_animation
  name: Bounce
- action: add_frame
- action: add_frame
  frame: "1"
- action: add_inbetweens
  frame: "1"
  count: 2
- action: rename_frame
  frame: "2"
  name: Tween
- action: select_frame
  frame: "1"
- action: add_layer
- action: hide_layer
  layer: "1"
- action: set_fps
  fps: 24
- action: set_onion_skinning
  enabled: false
`
	s, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Run(context.Background(), s); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	st := r.Store.State()
	if st.Animation.Name != "Bounce" {
		t.Errorf("Name = %q", st.Animation.Name)
	}
	if n := len(st.Animation.Frames); n != 5 {
		t.Fatalf("Expected 5 frames, got %d", n)
	}
	if st.Animation.Frames[1].Name != "Tween" {
		t.Errorf("Frame 2 name = %q", st.Animation.Frames[1].Name)
	}
	if st.CurrentFrameID != st.Animation.Frames[0].ID {
		t.Error("Frame 1 should be current")
	}
	f := st.Animation.Frames[0]
	if len(f.Layers) != 2 || f.Layers[0].Visible || !f.Layers[1].Visible {
		t.Errorf("Unexpected layers: %+v", f.Layers)
	}
	if st.FPS != 24 || st.OnionSkinning {
		t.Errorf("FPS=%d onion=%v", st.FPS, st.OnionSkinning)
	}
	if err := r.Store.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestRunStroke(t *testing.T) {
	r := newRunner(20, 20)
	s := &Script{Steps: []Step{
		{Action: "stroke", Color: "#0000FF", Size: 6, Points: [][2]float64{{0, 10}, {20, 10}}},
	}}
	if err := r.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	st := r.Store.State()
	if st.BrushColor != "#0000FF" || st.BrushSize != 6 {
		t.Errorf("Brush settings not applied: %s/%d", st.BrushColor, st.BrushSize)
	}
	r.Store.WithBuffer(st.CurrentLayerID, func(img *image.RGBA) {
		if c := img.RGBAAt(10, 10); c.B < 200 || c.A < 200 {
			t.Errorf("Stroke missing, got %v", c)
		}
	})
}

func TestStepErrors(t *testing.T) {
	st := newRunner(10, 10).Store.State()

	tests := []struct {
		name string
		step Step
		want error
	}{
		{"unknown action", Step{Action: "explode"}, ErrUnknownAction},
		{"frame out of range", Step{Action: "delete_frame", Frame: "3"}, ErrBadReference},
		{"layer out of range", Step{Action: "delete_layer", Layer: "0"}, ErrBadReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.step.ToAction(st); !errors.Is(err, tt.want) {
				t.Errorf("ToAction() = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := (Step{Action: "set_tool", Tool: "spray"}).ToAction(st); err == nil {
		t.Error("Expected error for unknown tool")
	}
}

func TestStepReferences(t *testing.T) {
	r := newRunner(10, 10)
	r.Store.Dispatch(studio.AddFrame{AfterFrameID: r.Store.State().CurrentFrameID})
	st := r.Store.State()

	a, err := Step{Action: "duplicate_frame", Frame: "1"}.ToAction(st)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.(studio.DuplicateFrame).FrameID; got != st.Animation.Frames[0].ID {
		t.Errorf("Index reference resolved to %s", got)
	}

	a, _ = Step{Action: "delete_frame", Frame: "current"}.ToAction(st)
	if got := a.(studio.DeleteFrame).FrameID; got != st.CurrentFrameID {
		t.Errorf("current resolved to %s", got)
	}

	a, _ = Step{Action: "delete_frame", Frame: "abc"}.ToAction(st)
	if got := a.(studio.DeleteFrame).FrameID; got != "abc" {
		t.Errorf("Literal id resolved to %s", got)
	}

	a, _ = Step{Action: "set_tool", Tool: "eraser"}.ToAction(st)
	if a.(studio.SetTool).Tool != model.ToolEraser {
		t.Error("Tool not mapped")
	}
}

func TestRunStopsOnError(t *testing.T) {
	r := newRunner(10, 10)
	s := &Script{Steps: []Step{{Action: "add_frame"}, {Action: "nope"}, {Action: "add_frame"}}}
	err := r.Run(context.Background(), s)
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("Run() = %v", err)
	}
	if n := len(r.Store.State().Animation.Frames); n != 2 {
		t.Errorf("Expected to stop after the first step, got %d frames", n)
	}
}
