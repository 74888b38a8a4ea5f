package studio

import "github.com/ivlev/anim8/internal/model"

// Action is a request to change the studio state. The set of actions is
// closed: each one carries its own reduction, so adding a kind without
// defining how it reduces does not compile.
type Action interface {
	reduce(t *txn)
}

type (
	SetTool       struct{ Tool model.Tool }
	SetBrushColor struct{ Color string }
	SetBrushSize  struct{ Size int }

	// SetCurrentFrame selects a frame and its bottom layer.
	SetCurrentFrame struct{ FrameID string }
	// SetCurrentLayer selects a layer of the current frame.
	SetCurrentLayer struct{ LayerID string }

	// AddFrame inserts a blank frame after AfterFrameID, or first when the
	// id is unknown.
	AddFrame       struct{ AfterFrameID string }
	DuplicateFrame struct{ FrameID string }
	DeleteFrame    struct{ FrameID string }
	RenameFrame    struct {
		FrameID string
		Name    string
	}

	// AddLayer inserts into the current frame after AfterLayerID, or at
	// the bottom when the id is unknown.
	AddLayer    struct{ AfterLayerID string }
	DeleteLayer struct{ LayerID string }

	// SetLayerVisibility and RenameLayer match the id across all frames.
	SetLayerVisibility struct {
		LayerID string
		Visible bool
	}
	RenameLayer struct {
		LayerID string
		Name    string
	}
	// ReorderLayer moves DragID to the index DropID occupies.
	ReorderLayer struct {
		DragID string
		DropID string
	}

	TogglePlaying    struct{}
	SetFPS           struct{ FPS int }
	SetOnionSkinning struct{ Enabled bool }

	// AddInbetweens inserts Count blank frames after FrameID. The last
	// frame has nothing to go between and is refused.
	AddInbetweens struct {
		FrameID string
		Count   int
	}

	// LoadAnimation replaces the whole state.
	LoadAnimation   struct{ State model.State }
	RenameAnimation struct{ Name string }
)

func (a SetTool) reduce(t *txn)       { t.state.SelectedTool = a.Tool }
func (a SetBrushColor) reduce(t *txn) { t.state.BrushColor = a.Color }
func (a SetBrushSize) reduce(t *txn)  { t.state.BrushSize = a.Size }

func (a SetCurrentFrame) reduce(t *txn) {
	f, ok := t.state.Animation.Frame(a.FrameID)
	if !ok {
		return
	}
	t.focus(f.ID, f.FirstLayerID())
}

func (a SetCurrentLayer) reduce(t *txn) {
	f, ok := t.state.CurrentFrame()
	if !ok || f.LayerIndex(a.LayerID) < 0 {
		return
	}
	t.state.CurrentLayerID = a.LayerID
}

func (a AddFrame) reduce(t *txn) {
	frames := t.state.Animation.Frames
	f := t.newFrame(frameName(len(frames) + 1))
	at := t.state.Animation.FrameIndex(a.AfterFrameID) + 1
	t.setFrames(insertFrames(frames, at, f))
	t.focus(f.ID, f.FirstLayerID())
}

func (a DuplicateFrame) reduce(t *txn) {
	i := t.state.Animation.FrameIndex(a.FrameID)
	if i < 0 {
		return
	}
	src := t.state.Animation.Frames[i]
	layers := make([]model.Layer, len(src.Layers))
	for j, l := range src.Layers {
		dup := l
		dup.ID = t.env.NewID()
		layers[j] = dup
		t.copyBuffer(l.ID, dup.ID)
	}
	f := model.Frame{ID: t.env.NewID(), Name: src.Name + " Copy", Layers: layers}
	t.setFrames(insertFrames(t.state.Animation.Frames, i+1, f))
	t.focus(f.ID, f.FirstLayerID())
}

func (a DeleteFrame) reduce(t *txn) {
	frames := t.state.Animation.Frames
	i := t.state.Animation.FrameIndex(a.FrameID)
	if len(frames) <= 1 || i < 0 {
		return
	}
	for _, l := range frames[i].Layers {
		t.release(l.ID)
	}
	rest := removeFrame(frames, i)
	t.setFrames(rest)
	if t.state.CurrentFrameID == a.FrameID {
		next := rest[max(0, i-1)]
		t.focus(next.ID, next.FirstLayerID())
	}
}

func (a RenameFrame) reduce(t *txn) {
	i := t.state.Animation.FrameIndex(a.FrameID)
	if i < 0 {
		return
	}
	f := t.state.Animation.Frames[i]
	f.Name = a.Name
	t.replaceFrame(i, f)
}

func (a AddLayer) reduce(t *txn) {
	i := t.state.Animation.FrameIndex(t.state.CurrentFrameID)
	if i < 0 {
		return
	}
	f := t.state.Animation.Frames[i]
	l := t.newLayer(layerName(t.env.Now()))
	at := f.LayerIndex(a.AfterLayerID) + 1
	f.Layers = insertLayer(f.Layers, at, l)
	t.replaceFrame(i, f)
	t.state.CurrentLayerID = l.ID
}

func (a DeleteLayer) reduce(t *txn) {
	i := t.state.Animation.FrameIndex(t.state.CurrentFrameID)
	if i < 0 {
		return
	}
	f := t.state.Animation.Frames[i]
	j := f.LayerIndex(a.LayerID)
	if len(f.Layers) <= 1 || j < 0 {
		return
	}
	f.Layers = removeLayer(f.Layers, j)
	t.release(a.LayerID)
	t.replaceFrame(i, f)
	if t.state.CurrentLayerID == a.LayerID {
		t.state.CurrentLayerID = f.Layers[max(0, j-1)].ID
	}
}

func (a SetLayerVisibility) reduce(t *txn) {
	t.updateLayer(a.LayerID, func(l *model.Layer) { l.Visible = a.Visible })
}

func (a RenameLayer) reduce(t *txn) {
	t.updateLayer(a.LayerID, func(l *model.Layer) { l.Name = a.Name })
}

func (a ReorderLayer) reduce(t *txn) {
	i := t.state.Animation.FrameIndex(t.state.CurrentFrameID)
	if i < 0 {
		return
	}
	f := t.state.Animation.Frames[i]
	drag, drop := f.LayerIndex(a.DragID), f.LayerIndex(a.DropID)
	if drag < 0 || drop < 0 || drag == drop {
		return
	}
	moved := f.Layers[drag]
	f.Layers = insertLayer(removeLayer(f.Layers, drag), drop, moved)
	t.replaceFrame(i, f)
}

func (TogglePlaying) reduce(t *txn)      { t.state.Playing = !t.state.Playing }
func (a SetFPS) reduce(t *txn)           { t.state.FPS = a.FPS }
func (a SetOnionSkinning) reduce(t *txn) { t.state.OnionSkinning = a.Enabled }

func (a AddInbetweens) reduce(t *txn) {
	frames := t.state.Animation.Frames
	i := t.state.Animation.FrameIndex(a.FrameID)
	if i < 0 || i >= len(frames)-1 || a.Count <= 0 {
		return
	}
	added := make([]model.Frame, a.Count)
	for k := range added {
		added[k] = t.newFrame("In-between")
	}
	t.setFrames(insertFrames(frames, i+1, added...))
}

// Every layer of the loaded document gets a fresh blank buffer, reused ids
// included; ids that disappear are released.
func (a LoadAnimation) reduce(t *txn) {
	next := model.Repair(a.State)
	keep := make(map[string]bool)
	for _, id := range next.Animation.LayerIDs() {
		keep[id] = true
		t.delta.Allocate = append(t.delta.Allocate, id)
	}
	for _, id := range t.state.Animation.LayerIDs() {
		if !keep[id] {
			t.release(id)
		}
	}
	// Fresh layer slices mark every loaded frame as changed.
	frames := make([]model.Frame, len(next.Animation.Frames))
	for i, f := range next.Animation.Frames {
		f.Layers = append([]model.Layer(nil), f.Layers...)
		frames[i] = f
	}
	next.Animation.Frames = frames
	t.state = next
}

func (a RenameAnimation) reduce(t *txn) { t.state.Animation.Name = a.Name }
