package viewer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"viewerd/internal/stack"
	"viewerd/internal/studystore"
	"viewerd/pkg/types"
)

// fakeFetcher completes fetches immediately unless a gate is installed for
// the image id, in which case Fetch blocks until the gate is released.
type fakeFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	fail    map[string]error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		gates: make(map[string]chan struct{}),
		fail:  make(map[string]error),
	}
}

func (f *fakeFetcher) gate(imageID string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[imageID] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeFetcher) failNext(imageID string, err error) {
	f.mu.Lock()
	f.fail[imageID] = err
	f.mu.Unlock()
}

func (f *fakeFetcher) Fetch(ctx context.Context, imageID string) (Image, error) {
	f.mu.Lock()
	gate := f.gates[imageID]
	ferr := f.fail[imageID]
	f.fetched = append(f.fetched, imageID)
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Image{}, ctx.Err()
		}
	}
	if ferr != nil {
		return Image{}, ferr
	}
	return Image{ID: imageID, Body: []byte("px")}, nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func (f *fakeFetcher) fetchedAt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.fetched) {
		return ""
	}
	return f.fetched[i]
}

// fakeEngine records prefetch arbitration calls in order.
type fakeEngine struct {
	mu    sync.Mutex
	calls []string
}

func (e *fakeEngine) Enable(vp int, s stack.Stack) {
	e.mu.Lock()
	e.calls = append(e.calls, fmt.Sprintf("enable:%d", vp))
	e.mu.Unlock()
}

func (e *fakeEngine) Disable(vp int) {
	e.mu.Lock()
	e.calls = append(e.calls, fmt.Sprintf("disable:%d", vp))
	e.mu.Unlock()
}

func (e *fakeEngine) callLog() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

type testRig struct {
	c       *Coordinator
	fetcher *fakeFetcher
	hub     *Hub
	bridge  *MemoryBridge
	pub     *MemoryPublisher
	engine  *fakeEngine
	lines   *LineSync
}

// testStudy builds one study "st1" with a series per entry: the key is the
// series UID, the value its instance count. Instances get ids a, b, c...
// and, when withFrame is set, a shared frame of reference and orientation.
func testStudy(withFrame bool, series map[string]int) types.Study {
	st := types.Study{StudyUID: "st1"}
	for uid, n := range series {
		se := types.Series{SeriesUID: uid}
		for i := 0; i < n; i++ {
			inst := types.Instance{SOPInstanceUID: fmt.Sprintf("%s-%c", uid, 'a'+i)}
			if withFrame {
				inst.FrameOfReferenceUID = "frame-1"
				inst.ImageOrientation = []float64{1, 0, 0, 0, 1, 0}
			}
			se.Instances = append(se.Instances, inst)
		}
		st.Series = append(st.Series, se)
	}
	return st
}

func newTestRig(t *testing.T, studies ...types.Study) *testRig {
	t.Helper()
	r := &testRig{
		fetcher: newFakeFetcher(),
		hub:     NewHub(),
		bridge:  NewMemoryBridge(),
		pub:     NewMemoryPublisher(),
		engine:  &fakeEngine{},
		lines:   NewLineSync(),
	}
	r.c = NewWithConfig(Config{
		Store:          studystore.NewFromStudies(studies),
		Fetcher:        r.fetcher,
		Surfaces:       r.hub,
		Bridge:         r.bridge,
		RefSync:        r.lines,
		Prefetch:       r.engine,
		Publisher:      r.pub,
		MaxViewports:   8,
		ReferenceLines: true,
	})
	t.Cleanup(r.c.Close)
	return r
}

func waitForState(t *testing.T, c *Coordinator, vp int, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.ViewportState(vp) == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("viewport %d never reached state %q (now %q)", vp, want, c.ViewportState(vp))
}

// newTestDeadline returns a func that sleeps briefly and reports whether the
// overall wait budget is exhausted.
func newTestDeadline() func() bool {
	deadline := time.Now().Add(2 * time.Second)
	return func() bool {
		time.Sleep(2 * time.Millisecond)
		return time.Now().After(deadline)
	}
}

// imageID mirrors how testStudy instances map to image ids.
func imageID(seriesUID string, i int) string {
	return fmt.Sprintf("wado:%s-%c", seriesUID, 'a'+i)
}
