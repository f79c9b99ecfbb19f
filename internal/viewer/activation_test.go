package viewer

import (
	"testing"

	"viewerd/pkg/types"
)

func TestActivateIsIdempotent(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"x": 3}))
	if err := r.c.Bind(1, types.BindRequest{StudyUID: "st1", SeriesUID: "x"}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	waitForState(t, r.c, 1, StateDisplayed)

	if err := r.c.Activate(1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := r.c.Activate(1); err != nil {
		t.Fatalf("re-activate: %v", err)
	}
	if got := len(r.pub.Named("activate")); got != 1 {
		t.Fatalf("re-activating the active viewport must not fire side effects, got %d activate events", got)
	}
	if got := len(r.pub.Named("prefetch_enable")); got != 1 {
		t.Fatalf("expected one prefetch enable, got %d", got)
	}
	if r.c.ActiveViewport() != 1 {
		t.Fatalf("active viewport should be 1")
	}
}

func TestActivateOutOfRange(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"x": 1}))
	if err := r.c.Activate(-1); !IsViewportNotFound(err) {
		t.Fatalf("expected viewport-not-found, got %v", err)
	}
}

func TestSingleActiveViewportAndHighlight(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"x": 2, "y": 2}))
	for i, se := range []string{"x", "y"} {
		if err := r.c.Bind(i, types.BindRequest{StudyUID: "st1", SeriesUID: se}); err != nil {
			t.Fatalf("bind %d: %v", i, err)
		}
		waitForState(t, r.c, i, StateDisplayed)
	}

	if err := r.c.Activate(0); err != nil {
		t.Fatalf("activate 0: %v", err)
	}
	if err := r.c.Activate(1); err != nil {
		t.Fatalf("activate 1: %v", err)
	}

	s0, _ := r.hub.Local(0)
	s1, _ := r.hub.Local(1)
	if s0.Highlighted() {
		t.Fatalf("viewport 0 should lose its highlight")
	}
	if !s1.Highlighted() {
		t.Fatalf("viewport 1 should be highlighted")
	}
	if r.c.ActiveViewport() != 1 {
		t.Fatalf("exactly one viewport may be active; got %d", r.c.ActiveViewport())
	}
}

func TestActivationSwitchesPrefetchInOrder(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"x": 3, "y": 3}))
	if err := r.c.Bind(1, types.BindRequest{StudyUID: "st1", SeriesUID: "x"}); err != nil {
		t.Fatalf("bind 1: %v", err)
	}
	if err := r.c.Bind(3, types.BindRequest{StudyUID: "st1", SeriesUID: "y"}); err != nil {
		t.Fatalf("bind 3: %v", err)
	}
	waitForState(t, r.c, 1, StateDisplayed)
	waitForState(t, r.c, 3, StateDisplayed)

	if err := r.c.Activate(1); err != nil {
		t.Fatalf("activate 1: %v", err)
	}
	if err := r.c.Activate(3); err != nil {
		t.Fatalf("activate 3: %v", err)
	}

	calls := r.engine.callLog()
	disableIdx, enableIdx := -1, -1
	for i, call := range calls {
		if call == "disable:1" && disableIdx == -1 {
			disableIdx = i
		}
		if call == "enable:3" {
			enableIdx = i
		}
	}
	if disableIdx == -1 || enableIdx == -1 || disableIdx > enableIdx {
		t.Fatalf("expected disable:1 before enable:3, calls: %v", calls)
	}

	st := r.c.Status()
	for _, vs := range st.Viewports {
		if vs.Index == 1 && vs.Prefetching {
			t.Fatalf("viewport 1 should no longer prefetch")
		}
		if vs.Index == 3 && !vs.Prefetching {
			t.Fatalf("viewport 3 should prefetch")
		}
	}
}

func TestSingleImageStackNeverPrefetches(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"one": 1}))
	if err := r.c.Bind(0, types.BindRequest{StudyUID: "st1", SeriesUID: "one"}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	waitForState(t, r.c, 0, StateDisplayed)
	if err := r.c.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}

	for _, call := range r.engine.callLog() {
		if call == "enable:0" {
			t.Fatalf("prefetch must stay off for single-image stacks, calls: %v", r.engine.callLog())
		}
	}
	if len(r.pub.Named("prefetch_enable")) != 0 {
		t.Fatalf("no prefetch_enable event expected")
	}
}

func TestReferenceLineArbitration(t *testing.T) {
	r := newTestRig(t, testStudy(true, map[string]int{"x": 2, "y": 2}))
	for i, se := range []string{"x", "y"} {
		if err := r.c.Bind(i, types.BindRequest{StudyUID: "st1", SeriesUID: se}); err != nil {
			t.Fatalf("bind %d: %v", i, err)
		}
		waitForState(t, r.c, i, StateDisplayed)
	}

	if !r.lines.Registered(0) || !r.lines.Registered(1) {
		t.Fatalf("both viewports carry a frame of reference and should register")
	}

	if err := r.c.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if r.lines.Overlay(0) {
		t.Fatalf("the active viewport hides its own reference lines")
	}
	if !r.lines.Overlay(1) {
		t.Fatalf("other displayed viewports show reference lines")
	}

	// Flipping activation flips the suppression.
	if err := r.c.Activate(1); err != nil {
		t.Fatalf("activate 1: %v", err)
	}
	if r.lines.Overlay(1) || !r.lines.Overlay(0) {
		t.Fatalf("suppression should follow the active viewport")
	}
}

func TestNoReferenceLinesWithoutFrame(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"x": 2}))
	if err := r.c.Bind(0, types.BindRequest{StudyUID: "st1", SeriesUID: "x"}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	waitForState(t, r.c, 0, StateDisplayed)
	if r.lines.Registered(0) {
		t.Fatalf("images without orientation metadata must not register for line sync")
	}
}

func TestRebindToSingleImageStackStopsPrefetch(t *testing.T) {
	r := newTestRig(t, testStudy(false, map[string]int{"multi": 3, "one": 1}))
	if err := r.c.Bind(0, types.BindRequest{StudyUID: "st1", SeriesUID: "multi"}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	waitForState(t, r.c, 0, StateDisplayed)
	if err := r.c.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := r.c.Bind(0, types.BindRequest{StudyUID: "st1", SeriesUID: "one"}); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	waitForState(t, r.c, 0, StateDisplayed)

	for _, vs := range r.c.Status().Viewports {
		if vs.Index == 0 && vs.Prefetching {
			t.Fatalf("prefetch run from the previous binding should be stopped")
		}
	}
	found := false
	for _, call := range r.engine.callLog() {
		if call == "disable:0" {
			found = true
		}
	}
	if !found {
		t.Fatalf("engine should be told to stop, calls: %v", r.engine.callLog())
	}
	if len(r.pub.Named("prefetch_disable")) == 0 {
		t.Fatalf("prefetch_disable event expected on rebind")
	}
}

func TestActivateUnboundSlotSkipsReferenceLineEvent(t *testing.T) {
	r := newTestRig(t, testStudy(true, map[string]int{"x": 2}))
	if err := r.c.Activate(3); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got := len(r.pub.Named("reflines_show")); got != 0 {
		t.Fatalf("empty slot should not announce reference lines, got %d events", got)
	}
	if got := len(r.pub.Named("activate")); got != 1 {
		t.Fatalf("expected one activate event, got %d", got)
	}
}
