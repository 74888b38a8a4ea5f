package raster

import (
	"image"
	"image/draw"

	"github.com/ivlev/anim8/internal/model"
)

// Composite draws the visible layers of f onto dst in list order, later
// layers on top. Opacity is not applied. Layers without a buffer are skipped.
func Composite(dst draw.Image, f model.Frame, reg *Registry) {
	for _, l := range f.Layers {
		if !l.Visible {
			continue
		}
		src, ok := reg.Get(l.ID)
		if !ok {
			continue
		}
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Over)
	}
}

// Flatten returns a new image holding the composite of f.
func Flatten(f model.Frame, reg *Registry) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, reg.width, reg.height))
	Composite(dst, f, reg)
	return dst
}
