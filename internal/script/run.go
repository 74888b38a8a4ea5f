package script

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ivlev/anim8/internal/canvas"
	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/studio"
)

// Runner applies steps to a store. Stroke steps need a Canvas.
type Runner struct {
	Store  *studio.Store
	Canvas *canvas.Canvas
}

// Run executes steps in order and stops at the first failing one.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}
	return nil
}

// Step executes a single step.
func (r *Runner) Step(step Step) error {
	if step.Action == "stroke" {
		return r.stroke(step)
	}
	var err error
	r.Store.DispatchFunc(func(st model.State) studio.Action {
		var a studio.Action
		a, err = step.ToAction(st)
		return a
	})
	return err
}

func (r *Runner) stroke(step Step) error {
	if r.Canvas == nil {
		return fmt.Errorf("stroke: no canvas")
	}
	if step.Tool != "" {
		r.Store.Dispatch(studio.SetTool{Tool: model.Tool(step.Tool)})
	}
	if step.Color != "" {
		r.Store.Dispatch(studio.SetBrushColor{Color: step.Color})
	}
	if step.Size > 0 {
		r.Store.Dispatch(studio.SetBrushSize{Size: step.Size})
	}
	points := make([]canvas.Point, len(step.Points))
	for i, p := range step.Points {
		points[i] = canvas.Point{X: p[0], Y: p[1]}
	}
	return r.Canvas.Stroke(points)
}

// ToAction resolves references against st and builds the studio action.
func (s Step) ToAction(st model.State) (studio.Action, error) {
	switch s.Action {
	case "set_tool":
		switch model.Tool(s.Tool) {
		case model.ToolBrush, model.ToolEraser:
			return studio.SetTool{Tool: model.Tool(s.Tool)}, nil
		}
		return nil, fmt.Errorf("unknown tool %q", s.Tool)
	case "set_brush_color":
		return studio.SetBrushColor{Color: s.Color}, nil
	case "set_brush_size":
		return studio.SetBrushSize{Size: s.Size}, nil
	case "set_fps":
		return studio.SetFPS{FPS: s.FPS}, nil
	case "set_onion_skinning":
		return studio.SetOnionSkinning{Enabled: s.Enabled == nil || *s.Enabled}, nil
	case "toggle_playing":
		return studio.TogglePlaying{}, nil
	case "rename_animation":
		return studio.RenameAnimation{Name: s.Name}, nil
	}

	frame, err := resolveFrame(st, s.Frame)
	if err != nil {
		return nil, err
	}
	switch s.Action {
	case "set_current_frame", "select_frame":
		return studio.SetCurrentFrame{FrameID: frame}, nil
	case "add_frame":
		return studio.AddFrame{AfterFrameID: frame}, nil
	case "duplicate_frame":
		return studio.DuplicateFrame{FrameID: frame}, nil
	case "delete_frame":
		return studio.DeleteFrame{FrameID: frame}, nil
	case "rename_frame":
		return studio.RenameFrame{FrameID: frame, Name: s.Name}, nil
	case "add_inbetweens":
		return studio.AddInbetweens{FrameID: frame, Count: max(s.Count, 1)}, nil
	}

	layer, err := resolveLayer(st, s.Layer)
	if err != nil {
		return nil, err
	}
	switch s.Action {
	case "set_current_layer", "select_layer":
		return studio.SetCurrentLayer{LayerID: layer}, nil
	case "add_layer":
		return studio.AddLayer{AfterLayerID: layer}, nil
	case "delete_layer":
		return studio.DeleteLayer{LayerID: layer}, nil
	case "rename_layer":
		return studio.RenameLayer{LayerID: layer, Name: s.Name}, nil
	case "set_layer_visibility", "hide_layer", "show_layer":
		visible := s.Action == "show_layer"
		if s.Visible != nil {
			visible = *s.Visible
		}
		return studio.SetLayerVisibility{LayerID: layer, Visible: visible}, nil
	case "reorder_layer":
		target, err := resolveLayer(st, s.Target)
		if err != nil {
			return nil, err
		}
		return studio.ReorderLayer{DragID: layer, DropID: target}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, s.Action)
}

func resolveFrame(st model.State, ref string) (string, error) {
	if ref == "" || ref == "current" {
		return st.CurrentFrameID, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		frames := st.Animation.Frames
		if n < 1 || n > len(frames) {
			return "", fmt.Errorf("%w: frame %d of %d", ErrBadReference, n, len(frames))
		}
		return frames[n-1].ID, nil
	}
	return ref, nil
}

// resolveLayer reads positions within the current frame.
func resolveLayer(st model.State, ref string) (string, error) {
	if ref == "" || ref == "current" {
		return st.CurrentLayerID, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		f, _ := st.CurrentFrame()
		if n < 1 || n > len(f.Layers) {
			return "", fmt.Errorf("%w: layer %d of %d", ErrBadReference, n, len(f.Layers))
		}
		return f.Layers[n-1].ID, nil
	}
	return ref, nil
}
