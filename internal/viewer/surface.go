package viewer

import (
	"fmt"
	"sync"

	"viewerd/pkg/types"
)

// Hub is the in-process SurfaceProvider. Each slot gets a LocalSurface that
// records what the render layer would draw and fans out render/navigation
// notifications to attached subscriptions.
type Hub struct {
	mu       sync.Mutex
	surfaces map[int]*LocalSurface
}

func NewHub() *Hub {
	return &Hub{surfaces: make(map[int]*LocalSurface)}
}

func (h *Hub) Acquire(vp int) (RenderSurface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.surfaces[vp]; ok {
		return s, nil
	}
	s := newLocalSurface(vp)
	h.surfaces[vp] = s
	return s, nil
}

func (h *Hub) Surface(vp int) (RenderSurface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[vp]
	if !ok {
		return nil, false
	}
	return s, true
}

// Local returns the concrete surface for driving notifications (HTTP layer,
// tests). Same lookup semantics as Surface.
func (h *Hub) Local(vp int) (*LocalSurface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[vp]
	return s, ok
}

func (h *Hub) Release(vp int) error {
	h.mu.Lock()
	s, ok := h.surfaces[vp]
	delete(h.surfaces, vp)
	h.mu.Unlock()
	if !ok {
		return nil
	}
	s.release()
	return nil
}

// LocalSurface is the in-process render surface for one slot.
type LocalSurface struct {
	mu sync.Mutex

	index     int
	released  bool
	displayed string
	settings  types.ViewSettings
	stackIDs  []string
	stackCur  int
	empty     bool
	highlight bool
	progress  map[string]int
	playback  bool

	nextSubID  int
	renderSubs map[int]func(types.ViewSettings)
	navSubs    map[int]func(string)
}

func newLocalSurface(index int) *LocalSurface {
	return &LocalSurface{
		index:      index,
		empty:      true,
		progress:   make(map[string]int),
		renderSubs: make(map[int]func(types.ViewSettings)),
		navSubs:    make(map[int]func(string)),
	}
}

func (s *LocalSurface) Display(imageID string, settings types.ViewSettings) error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return fmt.Errorf("surface %d released", s.index)
	}
	s.displayed = imageID
	s.settings = settings
	s.empty = false
	s.mu.Unlock()
	s.notifyRender(settings)
	return nil
}

func (s *LocalSurface) SetStack(imageIDs []string, currentIndex int) {
	s.mu.Lock()
	s.stackIDs = append([]string(nil), imageIDs...)
	s.stackCur = currentIndex
	s.mu.Unlock()
}

func (s *LocalSurface) SetEmptyMarker(on bool) {
	s.mu.Lock()
	s.empty = on
	if on {
		s.displayed = ""
	}
	s.mu.Unlock()
}

func (s *LocalSurface) SetHighlight(on bool) {
	s.mu.Lock()
	s.highlight = on
	s.mu.Unlock()
}

func (s *LocalSurface) ShowProgress(imageID string, percent int) {
	s.mu.Lock()
	s.progress[imageID] = percent
	s.mu.Unlock()
}

func (s *LocalSurface) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return fmt.Errorf("surface %d released", s.index)
	}
	s.playback = false
	return nil
}

func (s *LocalSurface) OnRenderCompleted(fn func(types.ViewSettings)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.renderSubs[id] = fn
	return &surfaceSub{close: func() {
		s.mu.Lock()
		delete(s.renderSubs, id)
		s.mu.Unlock()
	}}
}

func (s *LocalSurface) OnNavigation(fn func(string)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.navSubs[id] = fn
	return &surfaceSub{close: func() {
		s.mu.Lock()
		delete(s.navSubs, id)
		s.mu.Unlock()
	}}
}

// ApplySettings updates view settings and notifies render listeners, the way
// an interactive pan/zoom/window-level change would.
func (s *LocalSurface) ApplySettings(settings types.ViewSettings) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.settings = settings
	s.mu.Unlock()
	s.notifyRender(settings)
}

// NotifyNavigation moves the surface cursor to imageID and fires navigation
// listeners, the way a scroll/stack tool would.
func (s *LocalSurface) NotifyNavigation(imageID string) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.displayed = imageID
	fns := make([]func(string), 0, len(s.navSubs))
	for _, fn := range s.navSubs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	// Invoke outside the surface lock: listeners re-enter the coordinator.
	for _, fn := range fns {
		fn(imageID)
	}
}

func (s *LocalSurface) notifyRender(settings types.ViewSettings) {
	s.mu.Lock()
	fns := make([]func(types.ViewSettings), 0, len(s.renderSubs))
	for _, fn := range s.renderSubs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(settings)
	}
}

// Displayed returns the image id currently shown, empty when none.
func (s *LocalSurface) Displayed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayed
}

// Highlighted reports whether the active-viewport highlight is on.
func (s *LocalSurface) Highlighted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight
}

// EmptyMarker reports whether the empty-state marker is shown.
func (s *LocalSurface) EmptyMarker() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.empty
}

// Progress returns the last reported percentage for an image.
func (s *LocalSurface) Progress(imageID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[imageID]
	return p, ok
}

func (s *LocalSurface) release() {
	s.mu.Lock()
	s.released = true
	s.renderSubs = make(map[int]func(types.ViewSettings))
	s.navSubs = make(map[int]func(string))
	s.mu.Unlock()
}

type surfaceSub struct {
	once  sync.Once
	close func()
}

func (u *surfaceSub) Close() { u.once.Do(u.close) }
