package viewer

import (
	"sort"
	"sync"

	"viewerd/pkg/types"
)

// Persisted keys. The bridge exists only so a reloading UI can re-derive its
// state; the coordinator never reads it back during normal operation.
const (
	keyImageIndex = "image_index"
	keySettings   = "settings"
)

// PersistenceBridge is the write-only state store keyed by viewport identity.
type PersistenceBridge interface {
	// PublishIndex overwrites the persisted cursor index for a viewport.
	PublishIndex(vp, index int)
	// PublishSettings overwrites the persisted view settings for a viewport.
	PublishSettings(vp int, s types.ViewSettings)
	// Clear drops everything persisted for a viewport.
	Clear(vp int)
	// Snapshot returns all persisted entries for UI reconstruction.
	Snapshot() []types.SessionEntry
}

// MemoryBridge is the default in-process bridge.
type MemoryBridge struct {
	mu      sync.Mutex
	entries map[int]map[string]any
	// publish counters by viewport+key, for duplicate-listener detection
	// in tests and debugging.
	counts map[int]map[string]int
}

func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{
		entries: make(map[int]map[string]any),
		counts:  make(map[int]map[string]int),
	}
}

func (b *MemoryBridge) put(vp int, key string, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.entries[vp] == nil {
		b.entries[vp] = make(map[string]any)
		b.counts[vp] = make(map[string]int)
	}
	b.entries[vp][key] = v
	b.counts[vp][key]++
}

func (b *MemoryBridge) PublishIndex(vp, index int) { b.put(vp, keyImageIndex, index) }

func (b *MemoryBridge) PublishSettings(vp int, s types.ViewSettings) { b.put(vp, keySettings, s) }

func (b *MemoryBridge) Clear(vp int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, vp)
	delete(b.counts, vp)
}

// Index returns the persisted cursor index for a viewport, if any.
func (b *MemoryBridge) Index(vp int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.entries[vp]
	if m == nil {
		return 0, false
	}
	v, ok := m[keyImageIndex]
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// PublishCount returns how many times a key was overwritten for a viewport.
func (b *MemoryBridge) PublishCount(vp int, key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.counts[vp] == nil {
		return 0
	}
	return b.counts[vp][key]
}

func (b *MemoryBridge) Snapshot() []types.SessionEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []types.SessionEntry
	for vp, m := range b.entries {
		for k, v := range m {
			out = append(out, types.SessionEntry{Viewport: vp, Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Viewport != out[j].Viewport {
			return out[i].Viewport < out[j].Viewport
		}
		return out[i].Key < out[j].Key
	})
	return out
}
