// Package canvas turns pointer input into strokes on the current layer.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/gogpu/gg"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/studio"
	"github.com/ivlev/anim8/internal/thumbnail"
)

// ErrNoLayer is returned when a stroke starts without a drawable current layer.
var ErrNoLayer = errors.New("no current layer to draw on")

// Point is a position in raster coordinates.
type Point struct {
	X, Y float64
}

// MapPoint converts a point on a display surface of bounds display to the
// raster coordinates of a width x height animation.
func MapPoint(p Point, display image.Rectangle, width, height int) Point {
	if display.Dx() == 0 || display.Dy() == 0 {
		return p
	}
	sx := float64(width) / float64(display.Dx())
	sy := float64(height) / float64(display.Dy())
	return Point{
		X: (p.X - float64(display.Min.X)) * sx,
		Y: (p.Y - float64(display.Min.Y)) * sy,
	}
}

// Canvas holds the in-progress stroke. Buffers are only touched through the
// store so strokes serialize with dispatches.
type Canvas struct {
	store  *studio.Store
	thumbs *thumbnail.Cache

	mu      sync.Mutex
	drawing bool
	frameID string
	layerID string
	last    Point
}

// New returns a canvas over store. thumbs may be nil.
func New(store *studio.Store, thumbs *thumbnail.Cache) *Canvas {
	return &Canvas{store: store, thumbs: thumbs}
}

// Drawing reports whether a stroke is in progress.
func (c *Canvas) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawing
}

// PointerDown starts a stroke at p. It reports false when there is no
// current layer to draw on.
func (c *Canvas) PointerDown(p Point) bool {
	st := c.store.State()
	layer, ok := st.CurrentLayer()
	if !ok {
		return false
	}
	if !c.store.WithBuffer(layer.ID, func(*image.RGBA) {}) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawing = true
	c.frameID = st.CurrentFrameID
	c.layerID = layer.ID
	c.last = p
	return true
}

// PointerMove paints the segment from the previous point to p. Moves
// outside a stroke are ignored.
func (c *Canvas) PointerMove(p Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.drawing {
		return nil
	}

	st := c.store.State()
	layer, ok := st.CurrentLayer()
	if !ok || layer.ID != c.layerID {
		c.drawing = false
		return nil
	}

	from := c.last
	c.last = p
	var err error
	c.store.WithBuffer(layer.ID, func(dst *image.RGBA) {
		err = paint(dst, st, from, p)
	})
	return err
}

// PointerUp ends the stroke and redraws the frame thumbnail.
func (c *Canvas) PointerUp() {
	c.mu.Lock()
	was, frameID := c.drawing, c.frameID
	c.drawing = false
	c.frameID, c.layerID = "", ""
	c.mu.Unlock()

	if was && c.thumbs != nil {
		c.thumbs.RefreshFrame(c.store, frameID)
	}
}

// PointerLeave behaves like PointerUp.
func (c *Canvas) PointerLeave() { c.PointerUp() }

// Stroke draws a polyline with the current tool settings.
func (c *Canvas) Stroke(points []Point) error {
	if len(points) == 0 {
		return nil
	}
	if !c.PointerDown(points[0]) {
		return ErrNoLayer
	}
	defer c.PointerUp()

	rest := points[1:]
	if len(rest) == 0 {
		rest = points
	}
	for _, p := range rest {
		if err := c.PointerMove(p); err != nil {
			return fmt.Errorf("stroke: %w", err)
		}
	}
	return nil
}

func paint(dst *image.RGBA, st model.State, from, to Point) error {
	size := float64(st.BrushSize)
	if size <= 0 {
		size = 1
	}
	pad := int(math.Ceil(size/2)) + 1
	r := image.Rect(
		int(math.Floor(math.Min(from.X, to.X)))-pad,
		int(math.Floor(math.Min(from.Y, to.Y)))-pad,
		int(math.Ceil(math.Max(from.X, to.X)))+pad,
		int(math.Ceil(math.Max(from.Y, to.Y)))+pad,
	).Intersect(dst.Bounds())
	if r.Empty() {
		return nil
	}

	mask, err := segment(r, st.BrushColor, size, from, to)
	if err != nil {
		return err
	}

	switch st.SelectedTool {
	case model.ToolEraser:
		draw.DrawMask(dst, r, image.Transparent, image.Point{}, mask, image.Point{}, draw.Src)
	default:
		draw.Draw(dst, r, mask, image.Point{}, draw.Over)
	}
	return nil
}

// segment rasterizes one round-capped line into an image covering r.
func segment(r image.Rectangle, color string, width float64, from, to Point) (image.Image, error) {
	dc := gg.NewContext(r.Dx(), r.Dy())
	defer dc.Close()

	dc.Translate(-float64(r.Min.X), -float64(r.Min.Y))
	dc.SetHexColor(color)
	dc.SetLineWidth(width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(from.X, from.Y)
	dc.LineTo(to.X, to.Y)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}
