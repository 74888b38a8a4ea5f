package model

// FrameIndex returns the position of the frame with id, or -1.
func (a Animation) FrameIndex(id string) int {
	for i, f := range a.Frames {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Frame returns the frame with id.
func (a Animation) Frame(id string) (Frame, bool) {
	if i := a.FrameIndex(id); i >= 0 {
		return a.Frames[i], true
	}
	return Frame{}, false
}

// LayerIDs lists every layer id across all frames, in timeline order.
func (a Animation) LayerIDs() []string {
	var ids []string
	for _, f := range a.Frames {
		for _, l := range f.Layers {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// LayerIndex returns the position of the layer with id, or -1.
func (f Frame) LayerIndex(id string) int {
	for i, l := range f.Layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// FirstLayerID returns the bottom layer id, or "" for an empty frame.
func (f Frame) FirstLayerID() string {
	if len(f.Layers) == 0 {
		return ""
	}
	return f.Layers[0].ID
}

// CurrentFrame returns the frame CurrentFrameID points at.
func (s State) CurrentFrame() (Frame, bool) {
	return s.Animation.Frame(s.CurrentFrameID)
}

// CurrentLayer returns the current layer if it lives in the current frame.
func (s State) CurrentLayer() (Layer, bool) {
	f, ok := s.CurrentFrame()
	if !ok {
		return Layer{}, false
	}
	if i := f.LayerIndex(s.CurrentLayerID); i >= 0 {
		return f.Layers[i], true
	}
	return Layer{}, false
}

// SameFrame reports whether b is the untouched value of a. The reducer
// reuses the layer backing array of frames it does not modify.
func SameFrame(a, b Frame) bool {
	if a.ID != b.ID || a.Name != b.Name || len(a.Layers) != len(b.Layers) {
		return false
	}
	if len(a.Layers) == 0 {
		return true
	}
	return &a.Layers[0] == &b.Layers[0]
}
