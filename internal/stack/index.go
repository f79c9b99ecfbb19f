package stack

import "sync"

// Index is the per-image metadata lookup the render layer consults.
// Records are immutable once registered; a re-load replaces them wholesale.
type Index struct {
	mu      sync.RWMutex
	records map[string]Metadata
}

// NewIndex returns an empty metadata index.
func NewIndex() *Index {
	return &Index{records: make(map[string]Metadata)}
}

// Register stores the metadata of every image in a built stack, replacing
// any prior records for the same ids.
func (x *Index) Register(mds []Metadata) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, md := range mds {
		x.records[ImageID(md.Instance)] = md
	}
}

// Get returns the metadata registered for an image id.
func (x *Index) Get(imageID string) (Metadata, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	md, ok := x.records[imageID]
	return md, ok
}

// Reset drops all records. Used by tests and coordinator resets.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.records = make(map[string]Metadata)
}
