package viewer

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"viewerd/internal/stack"
	"viewerd/internal/studystore"
	"viewerd/pkg/types"
)

// Coordinator owns every viewport's load state plus the process-wide
// registries (in-flight progress entries, the active-viewport identity).
// All mutation happens under one mutex: interleavings of bind completions,
// navigation events, and activations serialize here, which is what gives
// activation its atomicity with respect to arbiter side effects.
type Coordinator struct {
	mu sync.Mutex

	store     *studystore.Store
	fetcher   ImageFetcher
	surfaces  SurfaceProvider
	bridge    PersistenceBridge
	refSync   ReferenceLineSync
	prefetch  PrefetchEngine
	publisher EventPublisher
	errorHook func(vp int, imageID string, err error)
	log       zerolog.Logger

	index *stack.Index

	maxViewports int
	refLinesOn   bool

	viewports map[int]*Viewport
	inflight  map[int]string // progress registry: viewport -> in-flight image id
	active    int            // -1 when no viewport is active

	loadsTotal      uint64
	loadErrorsTotal uint64
	startTime       time.Time
}

func (c *Coordinator) resetClock() { c.startTime = time.Now() }

// MetadataIndex exposes the per-image metadata lookup for the render layer.
func (c *Coordinator) MetadataIndex() *stack.Index { return c.index }

// Bridge exposes the persistence bridge for the /session surface.
func (c *Coordinator) Bridge() PersistenceBridge { return c.bridge }

// SurfaceHub returns the in-process surface hub, or nil when a custom
// SurfaceProvider was installed.
func (c *Coordinator) SurfaceHub() *Hub {
	h, _ := c.surfaces.(*Hub)
	return h
}

// ActiveViewport returns the active slot index, -1 when none.
func (c *Coordinator) ActiveViewport() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// InflightImage returns the progress-registry entry for a viewport.
func (c *Coordinator) InflightImage(vp int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.inflight[vp]
	return id, ok
}

// ViewportState returns the lifecycle state of a slot; StateEmpty for slots
// that were never bound.
func (c *Coordinator) ViewportState(vp int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.viewports[vp]; ok {
		return v.State
	}
	return StateEmpty
}

// Ready reports whether the coordinator can serve binds.
func (c *Coordinator) Ready() bool { return c.store != nil }

// Studies lists the studies known to the store.
func (c *Coordinator) Studies() []types.Study { return c.store.List() }

// Study returns one study by UID.
func (c *Coordinator) Study(uid string) (types.Study, bool) { return c.store.Get(uid) }

// Session returns the persistence-bridge contents for UI reconstruction.
func (c *Coordinator) Session() []types.SessionEntry { return c.bridge.Snapshot() }

// Reset tears down every viewport and clears all registries. Intended for
// test isolation and session switches.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	indexes := make([]int, 0, len(c.viewports))
	for i := range c.viewports {
		indexes = append(indexes, i)
	}
	c.mu.Unlock()
	for _, i := range indexes {
		_ = c.Unbind(i)
	}
	c.mu.Lock()
	c.active = -1
	c.inflight = make(map[int]string)
	c.viewports = make(map[int]*Viewport)
	c.mu.Unlock()
	c.index.Reset()
}

// Close releases everything. The coordinator must not be used afterwards.
func (c *Coordinator) Close() {
	c.Reset()
	if e, ok := c.prefetch.(*Engine); ok && e != nil {
		e.Close()
	}
}
