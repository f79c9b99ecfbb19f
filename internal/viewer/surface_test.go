package viewer

import (
	"testing"

	"viewerd/pkg/types"
)

func TestSubscriptionCloseDetaches(t *testing.T) {
	h := NewHub()
	s, err := h.Acquire(0)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	local := s.(*LocalSurface)

	var renders int
	sub := s.OnRenderCompleted(func(types.ViewSettings) { renders++ })
	local.ApplySettings(types.ViewSettings{Zoom: 2})
	sub.Close()
	sub.Close() // idempotent
	local.ApplySettings(types.ViewSettings{Zoom: 3})
	if renders != 1 {
		t.Fatalf("expected 1 notification after detach, got %d", renders)
	}
}

func TestReleasedSurfaceRejectsDisplay(t *testing.T) {
	h := NewHub()
	s, _ := h.Acquire(3)
	if err := h.Release(3); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := s.Display("img", types.DefaultViewSettings()); err == nil {
		t.Fatalf("display on a released surface should fail")
	}
	if _, ok := h.Surface(3); ok {
		t.Fatalf("released surface should not be returned by lookup")
	}
}

func TestAcquireIsIdempotent(t *testing.T) {
	h := NewHub()
	a, _ := h.Acquire(1)
	b, _ := h.Acquire(1)
	if a != b {
		t.Fatalf("acquire should return the same surface for a slot")
	}
}
