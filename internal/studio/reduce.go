// Package studio is the editor state machine. Reduce maps (state, action)
// to a new state plus the buffer changes that go with it, and Store applies
// both as one step.
package studio

import (
	"fmt"
	"time"

	"github.com/ivlev/anim8/internal/ident"
	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
)

// Env supplies the non-deterministic inputs of the reducer.
type Env struct {
	NewID ident.Generator
	Now   func() time.Time
}

func (e Env) withDefaults() Env {
	if e.NewID == nil {
		e.NewID = ident.New
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// txn accumulates one action's document edits and buffer delta.
type txn struct {
	env   Env
	state model.State
	delta raster.Delta
}

// Reduce applies a to s. It never fails: references to missing frames or
// layers leave the state unchanged. The returned delta lists the buffers
// to allocate, copy and release so the registry keeps one buffer per layer.
func Reduce(env Env, s model.State, a Action) (model.State, raster.Delta) {
	t := &txn{env: env.withDefaults(), state: s}
	a.reduce(t)
	return t.state, t.delta
}

func (t *txn) focus(frameID, layerID string) {
	t.state.CurrentFrameID = frameID
	t.state.CurrentLayerID = layerID
}

func (t *txn) newLayer(name string) model.Layer {
	l := model.NewLayer(t.env.NewID(), name)
	t.delta.Allocate = append(t.delta.Allocate, l.ID)
	return l
}

func (t *txn) newFrame(name string) model.Frame {
	layer := t.newLayer("Layer 1")
	return model.Frame{ID: t.env.NewID(), Name: name, Layers: []model.Layer{layer}}
}

func (t *txn) copyBuffer(from, to string) {
	t.delta.Copy = append(t.delta.Copy, raster.CopyOp{From: from, To: to})
}

func (t *txn) release(id string) {
	t.delta.Release = append(t.delta.Release, id)
}

func (t *txn) setFrames(frames []model.Frame) {
	t.state.Animation.Frames = frames
}

// replaceFrame swaps frame i in a fresh slice; other frames are shared.
func (t *txn) replaceFrame(i int, f model.Frame) {
	frames := make([]model.Frame, len(t.state.Animation.Frames))
	copy(frames, t.state.Animation.Frames)
	frames[i] = f
	t.setFrames(frames)
}

// updateLayer rewrites every layer with id, rebuilding only the frames
// that contain it.
func (t *txn) updateLayer(id string, fn func(l *model.Layer)) {
	var frames []model.Frame
	for i, f := range t.state.Animation.Frames {
		j := f.LayerIndex(id)
		if j < 0 {
			continue
		}
		if frames == nil {
			frames = make([]model.Frame, len(t.state.Animation.Frames))
			copy(frames, t.state.Animation.Frames)
		}
		layers := make([]model.Layer, len(f.Layers))
		copy(layers, f.Layers)
		fn(&layers[j])
		f.Layers = layers
		frames[i] = f
	}
	if frames != nil {
		t.setFrames(frames)
	}
}

func insertFrames(frames []model.Frame, at int, add ...model.Frame) []model.Frame {
	out := make([]model.Frame, 0, len(frames)+len(add))
	out = append(out, frames[:at]...)
	out = append(out, add...)
	return append(out, frames[at:]...)
}

func removeFrame(frames []model.Frame, i int) []model.Frame {
	out := make([]model.Frame, 0, len(frames)-1)
	out = append(out, frames[:i]...)
	return append(out, frames[i+1:]...)
}

func insertLayer(layers []model.Layer, at int, l model.Layer) []model.Layer {
	out := make([]model.Layer, 0, len(layers)+1)
	out = append(out, layers[:at]...)
	out = append(out, l)
	return append(out, layers[at:]...)
}

func removeLayer(layers []model.Layer, i int) []model.Layer {
	out := make([]model.Layer, 0, len(layers)-1)
	out = append(out, layers[:i]...)
	return append(out, layers[i+1:]...)
}

func frameName(n int) string { return fmt.Sprintf("Frame %d", n) }

// layerName follows the editor's habit of a short clock-derived suffix.
// Names may repeat.
func layerName(now time.Time) string {
	return fmt.Sprintf("Layer %d", now.UnixMilli()%100)
}
