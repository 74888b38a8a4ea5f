// Package renderer builds the image shown in the editor viewport.
package renderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
)

// OnionAlpha is the opacity of neighbouring frames under onion skinning.
const OnionAlpha = 0.2

// onionMask is OnionAlpha of 255.
var onionMask = image.NewUniform(color.Alpha{A: 51})

// View renders the current frame. With onion skinning on, the previous and
// next frames are drawn first at OnionAlpha.
func View(st model.State, reg *raster.Registry) *image.RGBA {
	w, h := reg.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	Draw(dst, st, reg)
	return dst
}

// Draw renders into dst, which is cleared first.
func Draw(dst *image.RGBA, st model.State, reg *raster.Registry) {
	clear(dst.Pix)

	frames := st.Animation.Frames
	i := st.Animation.FrameIndex(st.CurrentFrameID)
	if i < 0 {
		return
	}

	if st.OnionSkinning {
		if i > 0 {
			ghost(dst, frames[i-1], reg)
		}
		if i+1 < len(frames) {
			ghost(dst, frames[i+1], reg)
		}
	}
	raster.Composite(dst, frames[i], reg)
}

func ghost(dst *image.RGBA, f model.Frame, reg *raster.Registry) {
	for _, l := range f.Layers {
		if !l.Visible {
			continue
		}
		if src, ok := reg.Get(l.ID); ok {
			draw.DrawMask(dst, dst.Bounds(), src, image.Point{}, onionMask, image.Point{}, draw.Over)
		}
	}
}
