// Package raster owns the off-screen pixel buffers behind every layer.
//
// The Registry is keyed by layer id and must hold exactly one buffer per
// live layer. It is never mutated directly by callers that edit the
// document: the studio reducer describes buffer changes as a Delta and the
// store applies it in the same step as the document swap.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sort"

	"github.com/ivlev/anim8/internal/system"
)

var (
	ErrNoBuffer  = errors.New("no buffer for layer")
	ErrOutOfSync = errors.New("registry out of sync with document")
)

// Registry maps layer ids to RGBA buffers of one fixed size.
type Registry struct {
	width, height int
	buffers       map[string]*image.RGBA
}

// NewRegistry returns an empty registry for width x height buffers.
func NewRegistry(width, height int) *Registry {
	return &Registry{
		width:   width,
		height:  height,
		buffers: make(map[string]*image.RGBA),
	}
}

// Size returns the buffer dimensions.
func (r *Registry) Size() (int, int) { return r.width, r.height }

// Allocate creates a transparent buffer for id. An existing buffer for id
// is released first.
func (r *Registry) Allocate(id string, width, height int) *image.RGBA {
	if old, ok := r.buffers[id]; ok {
		system.PutImage(old)
	}
	img := system.GetImage(image.Rect(0, 0, width, height))
	r.buffers[id] = img
	return img
}

// Copy makes dst a full pixel copy of src, allocating dst when needed.
func (r *Registry) Copy(src, dst string) error {
	from, ok := r.buffers[src]
	if !ok {
		return fmt.Errorf("copy %s -> %s: %w", src, dst, ErrNoBuffer)
	}
	to, ok := r.buffers[dst]
	if !ok || to.Rect != from.Rect {
		to = r.Allocate(dst, from.Rect.Dx(), from.Rect.Dy())
	}
	copy(to.Pix, from.Pix)
	return nil
}

// Release drops the buffer for id. Unknown ids are ignored.
func (r *Registry) Release(id string) {
	if img, ok := r.buffers[id]; ok {
		delete(r.buffers, id)
		system.PutImage(img)
	}
}

// Get returns the buffer for id.
func (r *Registry) Get(id string) (*image.RGBA, bool) {
	img, ok := r.buffers[id]
	return img, ok
}

// Put stores img as the content of id, scaling nothing: img is drawn at
// the origin over a cleared buffer. Used when loading saved projects.
func (r *Registry) Put(id string, img image.Image) {
	dst, ok := r.buffers[id]
	if !ok {
		dst = r.Allocate(id, r.width, r.height)
	} else {
		clear(dst.Pix)
	}
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
}

// Keys returns the registered layer ids, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.buffers))
	for k := range r.buffers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of buffers.
func (r *Registry) Len() int { return len(r.buffers) }

// Bytes returns the pixel memory held by the registry.
func (r *Registry) Bytes() int {
	n := 0
	for _, img := range r.buffers {
		n += len(img.Pix)
	}
	return n
}

// Reset releases every buffer and switches to a new buffer size.
func (r *Registry) Reset(width, height int) {
	for id := range r.buffers {
		r.Release(id)
	}
	r.width, r.height = width, height
}

// Clone returns an independent deep copy for readers that work outside
// the store lock.
func (r *Registry) Clone() *Registry {
	c := NewRegistry(r.width, r.height)
	for id, img := range r.buffers {
		dup := image.NewRGBA(img.Rect)
		copy(dup.Pix, img.Pix)
		c.buffers[id] = dup
	}
	return c
}

// Verify checks that the key set equals ids.
func (r *Registry) Verify(ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
		if _, ok := r.buffers[id]; !ok {
			return fmt.Errorf("%w: layer %s has no buffer", ErrOutOfSync, id)
		}
	}
	for id := range r.buffers {
		if !want[id] {
			return fmt.Errorf("%w: buffer %s has no layer", ErrOutOfSync, id)
		}
	}
	return nil
}
