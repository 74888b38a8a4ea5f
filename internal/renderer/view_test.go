package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/anim8/internal/ident"
	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
	"github.com/ivlev/anim8/internal/studio"
)

// threeFrames paints frame i's only layer at pixel (i, 0).
func threeFrames(t *testing.T) (*studio.Store, []model.Frame) {
	t.Helper()
	s := studio.New(3, 1, studio.WithEnv(studio.Env{NewID: ident.Sequence("v")}))
	s.Dispatch(studio.AddFrame{AfterFrameID: s.State().CurrentFrameID})
	s.Dispatch(studio.AddFrame{AfterFrameID: s.State().CurrentFrameID})

	frames := s.State().Animation.Frames
	for i, f := range frames {
		s.WithBuffer(f.Layers[0].ID, func(img *image.RGBA) {
			img.SetRGBA(i, 0, color.RGBA{R: 255, A: 255})
		})
	}
	s.Dispatch(studio.SetCurrentFrame{FrameID: frames[1].ID})
	return s, frames
}

func TestViewOnionSkinning(t *testing.T) {
	s, _ := threeFrames(t)

	var img *image.RGBA
	s.View(func(st model.State, reg *raster.Registry) { img = View(st, reg) })

	if got := img.RGBAAt(1, 0); got.A != 255 {
		t.Errorf("Current frame should be opaque, got %v", got)
	}
	for _, x := range []int{0, 2} {
		got := img.RGBAAt(x, 0)
		if got.A < 45 || got.A > 57 {
			t.Errorf("Neighbour at x=%d should be drawn at ~20%%, got %v", x, got)
		}
	}
}

func TestViewWithoutOnionSkinning(t *testing.T) {
	s, _ := threeFrames(t)
	s.Dispatch(studio.SetOnionSkinning{Enabled: false})

	var img *image.RGBA
	s.View(func(st model.State, reg *raster.Registry) { img = View(st, reg) })

	if img.RGBAAt(0, 0).A != 0 || img.RGBAAt(2, 0).A != 0 {
		t.Error("Neighbours should not be drawn")
	}
	if img.RGBAAt(1, 0).A != 255 {
		t.Error("Current frame missing")
	}
}

func TestViewFirstFrameHasNoPrevious(t *testing.T) {
	s, frames := threeFrames(t)
	s.Dispatch(studio.SetCurrentFrame{FrameID: frames[0].ID})

	var img *image.RGBA
	s.View(func(st model.State, reg *raster.Registry) { img = View(st, reg) })

	if img.RGBAAt(0, 0).A != 255 {
		t.Error("Current frame missing")
	}
	if got := img.RGBAAt(1, 0).A; got == 0 {
		t.Error("Next frame should be ghosted")
	}
	if img.RGBAAt(2, 0).A != 0 {
		t.Error("Only adjacent frames are ghosted")
	}
}
