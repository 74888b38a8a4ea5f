package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/studio"
)

func TestPeriod(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{12, 83333333 * time.Nanosecond},
		{24, 41666666 * time.Nanosecond},
		{1, time.Second},
		{0, time.Second},
		{-5, time.Second},
	}
	for _, tt := range tests {
		if got := Period(tt.fps); got != tt.want {
			t.Errorf("Period(%d): expected %v, got %v", tt.fps, tt.want, got)
		}
	}
}

func newStore(t *testing.T, frames int) (*studio.Store, []string) {
	t.Helper()
	s := studio.New(4, 4)
	for i := 1; i < frames; i++ {
		s.Dispatch(studio.AddFrame{AfterFrameID: s.State().CurrentFrameID})
	}
	var ids []string
	for _, f := range s.State().Animation.Frames {
		ids = append(ids, f.ID)
	}
	s.Dispatch(studio.SetCurrentFrame{FrameID: ids[0]})
	return s, ids
}

func TestPlaybackWraps(t *testing.T) {
	s, ids := newStore(t, 3)
	s.Dispatch(studio.SetFPS{FPS: 50})

	var mu sync.Mutex
	var seen []string
	s.Subscribe(func(prev, next model.State) {
		if prev.CurrentFrameID != next.CurrentFrameID {
			mu.Lock()
			seen = append(seen, next.CurrentFrameID)
			mu.Unlock()
		}
	})

	c := New(context.Background(), s)
	defer c.Close()

	s.Dispatch(studio.TogglePlaying{})
	if !c.Running() {
		t.Fatal("Controller should run while playing")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n >= 4 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.Dispatch(studio.TogglePlaying{})
	if c.Running() {
		t.Error("Controller should stop with playback")
	}

	mu.Lock()
	got := append([]string(nil), seen...)
	mu.Unlock()
	if len(got) < 4 {
		t.Fatalf("Expected at least 4 frame changes, got %v", got)
	}
	want := []string{ids[1], ids[2], ids[0], ids[1]}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Step %d: expected %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}

	stopped := c.Advanced()
	time.Sleep(100 * time.Millisecond)
	if c.Advanced() != stopped {
		t.Error("Frames advanced after stop")
	}
}

func TestFPSChangeRestartsTicker(t *testing.T) {
	s, _ := newStore(t, 2)
	c := New(context.Background(), s)
	defer c.Close()

	s.Dispatch(studio.SetFPS{FPS: 1})
	s.Dispatch(studio.TogglePlaying{})
	time.Sleep(50 * time.Millisecond)
	if c.Advanced() != 0 {
		t.Fatalf("1 fps should not tick within 50ms, got %d", c.Advanced())
	}

	s.Dispatch(studio.SetFPS{FPS: 100})
	deadline := time.Now().Add(2 * time.Second)
	for c.Advanced() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Advanced() < 3 {
		t.Errorf("Expected faster ticks after fps change, got %d", c.Advanced())
	}
}

func TestCloseStopsTicker(t *testing.T) {
	s, _ := newStore(t, 2)
	s.Dispatch(studio.SetFPS{FPS: 100})
	s.Dispatch(studio.TogglePlaying{})

	c := New(context.Background(), s)
	if !c.Running() {
		t.Fatal("Controller should start when the store is already playing")
	}
	c.Close()
	if c.Running() {
		t.Error("Close should stop the ticker")
	}

	n := c.Advanced()
	time.Sleep(50 * time.Millisecond)
	if c.Advanced() != n {
		t.Error("Ticks continued after Close")
	}
}

func TestCancelledContext(t *testing.T) {
	s, _ := newStore(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	c := New(ctx, s)
	defer c.Close()

	cancel()
	s.Dispatch(studio.TogglePlaying{})
	if c.Running() {
		t.Error("A cancelled controller should not start")
	}
}
