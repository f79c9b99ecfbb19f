package viewer

import "sync"

// LineSync is the default reference-line synchronizer. It records which
// viewports share a frame of reference and which show the overlay; the
// actual intersection drawing is the render layer's job.
type LineSync struct {
	mu       sync.Mutex
	frames   map[int]string
	overlays map[int]bool
}

func NewLineSync() *LineSync {
	return &LineSync{
		frames:   make(map[int]string),
		overlays: make(map[int]bool),
	}
}

func (l *LineSync) Register(vp int, frameOfReferenceUID string) {
	l.mu.Lock()
	l.frames[vp] = frameOfReferenceUID
	l.mu.Unlock()
}

func (l *LineSync) Unregister(vp int) {
	l.mu.Lock()
	delete(l.frames, vp)
	delete(l.overlays, vp)
	l.mu.Unlock()
}

func (l *LineSync) SetOverlay(vp int, enabled bool) {
	l.mu.Lock()
	l.overlays[vp] = enabled
	l.mu.Unlock()
}

// Registered reports whether a viewport participates in line sync.
func (l *LineSync) Registered(vp int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.frames[vp]
	return ok
}

// Overlay reports whether the overlay is currently enabled for a viewport.
func (l *LineSync) Overlay(vp int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overlays[vp]
}
