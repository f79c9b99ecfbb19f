package viewer

import (
	"viewerd/internal/stack"
	"viewerd/pkg/types"
)

// State represents the lifecycle state of a viewport slot.
type State string

const (
	StateEmpty     State = "empty"
	StateLoading   State = "loading"
	StateDisplayed State = "displayed"
	StateError     State = "error"
)

// Image is the opaque payload returned by the fetch service. Decoding and
// rasterization happen elsewhere.
type Image struct {
	ID          string
	Body        []byte
	ContentType string
}

// Viewport is the per-slot load state. The Coordinator exclusively owns it;
// registries hold only the slot index.
type Viewport struct {
	Index    int
	State    State
	Stack    *stack.Stack
	Settings types.ViewSettings
	LastErr  string

	// gen increments on every bind so completions of superseded fetches can
	// be detected and dropped.
	gen uint64

	renderSub Subscription
	navSub    Subscription

	prefetching bool
	refLines    bool // registered with the reference-line synchronizer
}
