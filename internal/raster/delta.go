package raster

import "fmt"

// CopyOp duplicates the pixels of one layer into a new layer.
type CopyOp struct {
	From string
	To   string
}

// Delta is the buffer side of one document mutation.
type Delta struct {
	Allocate []string
	Copy     []CopyOp
	Release  []string
}

// Empty reports whether the delta touches no buffers.
func (d Delta) Empty() bool {
	return len(d.Allocate) == 0 && len(d.Copy) == 0 && len(d.Release) == 0
}

func (d Delta) String() string {
	return fmt.Sprintf("alloc=%d copy=%d release=%d", len(d.Allocate), len(d.Copy), len(d.Release))
}

// Apply performs d: allocations first, then copies, then releases, so a
// copy source released in the same delta is still readable.
// A missing copy source still yields a blank destination buffer.
func (r *Registry) Apply(d Delta) error {
	for _, id := range d.Allocate {
		r.Allocate(id, r.width, r.height)
	}
	var firstErr error
	for _, op := range d.Copy {
		if err := r.Copy(op.From, op.To); err != nil {
			if _, ok := r.buffers[op.To]; !ok {
				r.Allocate(op.To, r.width, r.height)
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, id := range d.Release {
		r.Release(id)
	}
	return firstErr
}
