package studio

import (
	"fmt"
	"image"
	"sync"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
)

// Listener observes committed transitions. It runs after the store lock
// is released and may dispatch.
type Listener func(prev, next model.State)

// Store holds the live state and the buffer registry and applies actions
// one at a time.
type Store struct {
	mu    sync.Mutex
	env   Env
	state model.State
	reg   *raster.Registry

	subsMu  sync.Mutex
	subs    map[int]Listener
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithEnv replaces the id generator and clock used by the reducer.
func WithEnv(env Env) Option {
	return func(s *Store) { s.env = env }
}

// New creates a store seeded with the initial one-frame, one-layer state
// and its single buffer.
func New(width, height int, opts ...Option) *Store {
	s := &Store{subs: make(map[int]Listener)}
	for _, opt := range opts {
		opt(s)
	}
	s.env = s.env.withDefaults()
	s.state = model.Initial(width, height, s.env.NewID)
	s.reg = raster.NewRegistry(width, height)
	for _, id := range s.state.Animation.LayerIDs() {
		s.reg.Allocate(id, width, height)
	}
	return s
}

// State returns the current state.
func (s *Store) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a, applies its buffer delta and notifies listeners.
func (s *Store) Dispatch(a Action) model.State {
	return s.DispatchFunc(func(model.State) Action { return a })
}

// DispatchFunc builds the action from the state it will be applied to,
// with no other dispatch in between. A nil action is a no-op.
func (s *Store) DispatchFunc(fn func(model.State) Action) model.State {
	return s.dispatch(fn, nil)
}

// DispatchWith dispatches a and then runs fill on the new state and
// registry before the lock is released, so listeners see the filled
// buffers. fill must not dispatch.
func (s *Store) DispatchWith(a Action, fill func(st model.State, reg *raster.Registry)) model.State {
	return s.dispatch(func(model.State) Action { return a }, fill)
}

func (s *Store) dispatch(fn func(model.State) Action, fill func(model.State, *raster.Registry)) model.State {
	s.mu.Lock()
	prev := s.state
	a := fn(prev)
	if a == nil {
		s.mu.Unlock()
		return prev
	}
	next, delta := Reduce(s.env, prev, a)
	s.commit(next, delta)
	if fill != nil {
		fill(next, s.reg)
	}
	s.mu.Unlock()

	logger().Debug("dispatch",
		"action", fmt.Sprintf("%T", a),
		"frames", len(next.Animation.Frames),
		"frame", next.CurrentFrameID,
		"layer", next.CurrentLayerID,
		"delta", delta.String())

	s.notify(prev, next)
	return next
}

func (s *Store) commit(next model.State, delta raster.Delta) {
	w, h := s.reg.Size()
	if next.Animation.Width != w || next.Animation.Height != h {
		// A loaded document of another size invalidates every buffer.
		s.reg.Reset(next.Animation.Width, next.Animation.Height)
		delta = raster.Delta{Allocate: next.Animation.LayerIDs()}
	}
	if !delta.Empty() {
		if err := s.reg.Apply(delta); err != nil {
			logger().Error("apply buffer delta", "err", err)
		}
	}
	s.state = next
	if err := s.reg.Verify(next.Animation.LayerIDs()); err != nil {
		logger().Error("registry check", "err", err)
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = l
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(prev, next model.State) {
	s.subsMu.Lock()
	ls := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		ls = append(ls, l)
	}
	s.subsMu.Unlock()

	for _, l := range ls {
		l(prev, next)
	}
}

// View runs fn with the state and registry under the store lock. fn must
// not dispatch or keep references to buffers.
func (s *Store) View(fn func(st model.State, reg *raster.Registry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state, s.reg)
}

// WithBuffer runs fn on the buffer of layerID under the store lock. It
// reports false when the layer has no buffer.
func (s *Store) WithBuffer(layerID string, fn func(img *image.RGBA)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.reg.Get(layerID)
	if !ok {
		return false
	}
	fn(img)
	return true
}

// Snapshot returns the state with a deep copy of the registry.
func (s *Store) Snapshot() (model.State, *raster.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.reg.Clone()
}

// Check verifies that the registry holds exactly the document's layers.
func (s *Store) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Verify(s.state.Animation.LayerIDs())
}

// Load replaces the document and fills layer buffers from images keyed by
// layer id. Layers without an image start blank, including ids the previous
// document already had. Listeners run after the buffers are filled.
func (s *Store) Load(st model.State, images map[string]image.Image) model.State {
	return s.DispatchWith(LoadAnimation{State: st}, func(next model.State, reg *raster.Registry) {
		for _, id := range next.Animation.LayerIDs() {
			if img, ok := images[id]; ok {
				reg.Put(id, img)
			}
		}
	})
}
