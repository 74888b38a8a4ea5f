// Package thumbnail keeps a small preview image per frame for the timeline.
package thumbnail

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
	"github.com/ivlev/anim8/internal/studio"
)

const (
	DefaultWidth  = 120
	DefaultHeight = 80
)

// Background fills the area around the scaled frame.
var Background = color.RGBA{R: 0x1c, G: 0x19, B: 0x17, A: 0xff}

// Cache maps frame ids to fixed-size previews. Entries are created on
// first sight and never resized or removed; the set is bounded by the
// frames the timeline has shown.
type Cache struct {
	width, height int

	mu      sync.Mutex
	entries map[string]*image.RGBA
}

// New returns an empty cache of width x height previews.
func New(width, height int) *Cache {
	return &Cache{width: width, height: height, entries: make(map[string]*image.RGBA)}
}

// Sync makes sure every frame has an entry.
func (c *Cache) Sync(frames []model.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range frames {
		c.entryLocked(f.ID)
	}
}

func (c *Cache) entryLocked(id string) *image.RGBA {
	img, ok := c.entries[id]
	if !ok {
		img = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
		draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
		c.entries[id] = img
	}
	return img
}

// Refresh redraws the preview of f from the layer buffers: background,
// then every visible layer scaled uniformly and centered.
func (c *Cache) Refresh(f model.Frame, reg *raster.Registry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.entryLocked(f.ID)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	aw, ah := reg.Size()
	if aw <= 0 || ah <= 0 {
		return
	}
	dr := Fit(c.width, c.height, aw, ah)
	for _, l := range f.Layers {
		if !l.Visible {
			continue
		}
		src, ok := reg.Get(l.ID)
		if !ok {
			continue
		}
		xdraw.ApproxBiLinear.Scale(dst, dr, src, src.Bounds(), xdraw.Over, nil)
	}
}

// Fit returns where an aw x ah image lands inside a tw x th box when scaled
// by min(tw/aw, th/ah) and centered.
func Fit(tw, th, aw, ah int) image.Rectangle {
	scale := min(float64(tw)/float64(aw), float64(th)/float64(ah))
	w := float64(aw) * scale
	h := float64(ah) * scale
	x := float64(tw)/2 - w/2
	y := float64(th)/2 - h/2
	return image.Rect(int(x+0.5), int(y+0.5), int(x+w+0.5), int(y+h+0.5))
}

// Get returns the preview of frame id.
func (c *Cache) Get(id string) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.entries[id]
	return img, ok
}

// Len returns the number of previews.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RefreshFrame redraws frame id from the store.
func (c *Cache) RefreshFrame(s *studio.Store, id string) {
	s.View(func(st model.State, reg *raster.Registry) {
		if f, ok := st.Animation.Frame(id); ok {
			c.Refresh(f, reg)
		}
	})
}

// Attach keeps the cache in step with s: every frame gets an entry and
// frames that appear or change (added, duplicated, loaded, layers toggled)
// are drawn right away.
// Stroke completion is reported separately through RefreshFrame.
func (c *Cache) Attach(s *studio.Store) (detach func()) {
	s.View(func(st model.State, reg *raster.Registry) {
		for _, f := range st.Animation.Frames {
			c.Refresh(f, reg)
		}
	})
	return s.Subscribe(func(prev, next model.State) {
		c.Sync(next.Animation.Frames)
		for _, f := range next.Animation.Frames {
			if old, ok := prev.Animation.Frame(f.ID); !ok || !model.SameFrame(old, f) {
				c.RefreshFrame(s, f.ID)
			}
		}
	})
}
