package viewer

import (
	"context"

	"viewerd/internal/stack"
	"viewerd/pkg/types"
)

// ImageFetcher is the async image fetch service. The coordinator issues
// exactly one Fetch per load; fetches are not cancelled at the service
// level, completion handlers check whether they are still current.
type ImageFetcher interface {
	Fetch(ctx context.Context, imageID string) (Image, error)
}

// Subscription is a handle for a listener attached to a render surface.
// Closing it detaches the listener; Close is idempotent.
type Subscription interface {
	Close()
}

// RenderSurface is the render target for one viewport. It accepts display
// and decoration operations and emits render-completion and navigation
// notifications through the subscriptions attached to it.
type RenderSurface interface {
	// Display shows an image with the given view settings.
	Display(imageID string, settings types.ViewSettings) error
	// SetStack registers the bound stack for downstream navigation tools.
	SetStack(imageIDs []string, currentIndex int)
	// SetEmptyMarker toggles the "no series bound" visual marker.
	SetEmptyMarker(on bool)
	// SetHighlight toggles the active-viewport highlight.
	SetHighlight(on bool)
	// ShowProgress displays fetch progress for an in-flight image.
	ShowProgress(imageID string, percent int)
	// StopPlayback stops any running cine playback. Best effort.
	StopPlayback() error

	// OnRenderCompleted attaches a listener fired after every completed
	// render with the settings in effect.
	OnRenderCompleted(fn func(types.ViewSettings)) Subscription
	// OnNavigation attaches a listener fired when the displayed image
	// changes, with the new image id.
	OnNavigation(fn func(imageID string)) Subscription
}

// SurfaceProvider creates and looks up render surfaces by viewport index.
// Lookup may fail during concurrent mount/unmount; callers treat a failed
// lookup as "skip", not as an error.
type SurfaceProvider interface {
	// Acquire returns the surface for a slot, creating it if needed.
	Acquire(vp int) (RenderSurface, error)
	// Surface returns the surface for a slot if one exists.
	Surface(vp int) (RenderSurface, bool)
	// Release tears down the surface for a slot.
	Release(vp int) error
}

// ReferenceLineSync is the shared cross-viewport position synchronizer.
// It records which viewports participate in reference-line rendering and
// which currently show the overlay; drawing is not its concern.
type ReferenceLineSync interface {
	Register(vp int, frameOfReferenceUID string)
	Unregister(vp int)
	SetOverlay(vp int, enabled bool)
}

// PrefetchEngine fetches stack neighbors of the cursor in the background.
type PrefetchEngine interface {
	Enable(vp int, s stack.Stack)
	Disable(vp int)
}
