// Package playback advances the current frame on a timer while the studio
// is playing.
package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/studio"
)

// Store is the part of studio.Store the controller drives.
type Store interface {
	State() model.State
	DispatchFunc(fn func(model.State) studio.Action) model.State
	Subscribe(l studio.Listener) func()
}

// Controller runs one ticker goroutine while the state says Playing and
// restarts it whenever Playing or FPS change.
type Controller struct {
	store       Store
	parent      context.Context
	unsubscribe func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	advanced atomic.Int64
}

// Period returns the tick interval for fps. Non-positive rates play at 1 fps.
func Period(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// New attaches a controller to store. Cancelling ctx stops playback ticks
// the same way Close does, without unsubscribing.
func New(ctx context.Context, store Store) *Controller {
	c := &Controller{store: store, parent: ctx}
	c.unsubscribe = store.Subscribe(c.onChange)
	c.sync(store.State())
	return c
}

func (c *Controller) onChange(prev, next model.State) {
	if prev.Playing != next.Playing || prev.FPS != next.FPS {
		c.sync(next)
	}
}

func (c *Controller) sync(st model.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if st.Playing && c.parent.Err() == nil {
		c.startLocked(Period(st.FPS))
	}
}

func (c *Controller) startLocked(period time.Duration) {
	ctx, cancel := context.WithCancel(c.parent)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go c.run(ctx, period, done)
}

// stopLocked cancels the ticker and waits for its goroutine to exit.
func (c *Controller) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel, c.done = nil, nil
}

func (c *Controller) run(ctx context.Context, period time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.advance()
		}
	}
}

func (c *Controller) advance() {
	c.store.DispatchFunc(func(st model.State) studio.Action {
		frames := st.Animation.Frames
		if !st.Playing || len(frames) == 0 {
			return nil
		}
		c.advanced.Add(1)
		next := (st.Animation.FrameIndex(st.CurrentFrameID) + 1) % len(frames)
		return studio.SetCurrentFrame{FrameID: frames[next].ID}
	})
}

// Running reports whether a ticker goroutine is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Advanced returns how many frame steps playback has dispatched.
func (c *Controller) Advanced() int64 { return c.advanced.Load() }

// Close stops playback ticks and detaches from the store. It returns after
// the ticker goroutine has exited.
func (c *Controller) Close() {
	c.unsubscribe()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}
