// Package model holds the animation document: an Animation made of ordered
// Frames, each made of ordered Layers, plus the editor state around it.
//
// Values are treated as immutable. The studio reducer rebuilds only the
// path it changes and shares everything else with the previous state.
package model

// Tool selects what a pointer stroke does to the current layer.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// Layer is one paintable raster plane inside a Frame.
// Opacity is persisted but not applied when compositing.
type Layer struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Visible bool    `json:"isVisible" yaml:"visible"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// Frame is one step of the timeline. Later layers are drawn on top.
type Frame struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Layers []Layer `json:"layers" yaml:"layers"`
}

// Animation is the document root. Width and Height are fixed at creation
// and every layer buffer matches them.
type Animation struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	Frames []Frame `json:"frames" yaml:"frames"`
}

// State is the whole editor state mutated by the studio reducer.
type State struct {
	Animation      Animation `json:"animation"`
	CurrentFrameID string    `json:"currentFrameId"`
	CurrentLayerID string    `json:"currentLayerId"`
	SelectedTool   Tool      `json:"selectedTool"`
	BrushColor     string    `json:"brushColor"`
	BrushSize      int       `json:"brushSize"`
	Playing        bool      `json:"isPlaying"`
	FPS            int       `json:"fps"`
	OnionSkinning  bool      `json:"onionSkinning"`
}

const (
	DefaultName       = "Untitled Animation"
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultBrushColor = "#FFC107"
	DefaultBrushSize  = 5
	DefaultFPS        = 12
)

// NewLayer returns a visible, fully opaque layer.
func NewLayer(id, name string) Layer {
	return Layer{ID: id, Name: name, Visible: true, Opacity: 1}
}

// Initial seeds a state with one animation, one frame and one layer.
func Initial(width, height int, newID func() string) State {
	layer := NewLayer(newID(), "Layer 1")
	frame := Frame{ID: newID(), Name: "Frame 1", Layers: []Layer{layer}}
	return State{
		Animation: Animation{
			ID:     newID(),
			Name:   DefaultName,
			Width:  width,
			Height: height,
			Frames: []Frame{frame},
		},
		CurrentFrameID: frame.ID,
		CurrentLayerID: layer.ID,
		SelectedTool:   ToolBrush,
		BrushColor:     DefaultBrushColor,
		BrushSize:      DefaultBrushSize,
		FPS:            DefaultFPS,
		OnionSkinning:  true,
	}
}
