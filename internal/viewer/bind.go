package viewer

import (
	"context"

	"viewerd/internal/stack"
	"viewerd/pkg/types"
)

// Bind binds a (study, series, start-index) request to a viewport slot:
// builds the stack, registers per-image metadata, records the in-flight
// image in the progress registry, and issues a single async fetch for the
// cursor image. A later Bind for the same slot supersedes an outstanding
// one; the superseded completion is detected by generation and dropped.
func (c *Coordinator) Bind(vp int, req types.BindRequest) error {
	if vp < 0 || vp >= c.maxViewports {
		return ErrViewportNotFound(vp)
	}
	c.publisher.Publish(Event{Name: "bind_start", Viewport: vp, Fields: map[string]any{
		"study": req.StudyUID, "series": req.SeriesUID,
	}})

	study, series, err := c.resolve(req)
	if err != nil {
		c.toEmpty(vp)
		c.publisher.Publish(Event{Name: "bind_invalid", Viewport: vp, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	st, mds, err := stack.Build(study, series, req.StartIndex)
	if err != nil {
		c.toEmpty(vp)
		c.publisher.Publish(Event{Name: "bind_invalid", Viewport: vp, Fields: map[string]any{"error": err.Error()}})
		return err
	}

	if _, err := c.surfaces.Acquire(vp); err != nil {
		c.toEmpty(vp)
		c.publisher.Publish(Event{Name: "bind_invalid", Viewport: vp, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	c.index.Register(mds)

	settings := types.DefaultViewSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	c.mu.Lock()
	v, ok := c.viewports[vp]
	if !ok {
		v = &Viewport{Index: vp, State: StateEmpty}
		c.viewports[vp] = v
	}
	// Re-binding replaces listeners, never stacks them.
	closeSubsLocked(v)
	// A rebind also supersedes any prefetch run started for the old stack.
	if v.prefetching {
		v.prefetching = false
		if c.prefetch != nil {
			c.prefetch.Disable(vp)
		}
		c.publisher.Publish(Event{Name: "prefetch_disable", Viewport: vp, Fields: map[string]any{}})
	}
	v.gen++
	gen := v.gen
	v.Stack = &st
	v.Settings = settings
	v.State = StateLoading
	v.LastErr = ""
	imageID := st.CurrentImageID()
	c.inflight[vp] = imageID
	c.mu.Unlock()

	go c.fetchAndComplete(vp, gen, imageID)
	return nil
}

// resolve maps the request to store records, distinguishing unknown study
// from unknown series for the error surface.
func (c *Coordinator) resolve(req types.BindRequest) (types.Study, types.Series, error) {
	if req.StudyUID == "" {
		return types.Study{}, types.Series{}, ErrStudyNotFound("(unspecified)")
	}
	if _, ok := c.store.Get(req.StudyUID); !ok {
		return types.Study{}, types.Series{}, ErrStudyNotFound(req.StudyUID)
	}
	study, series, ok := c.store.GetSeries(req.StudyUID, req.SeriesUID)
	if !ok {
		return types.Study{}, types.Series{}, ErrSeriesNotFound(req.SeriesUID)
	}
	return study, series, nil
}

// toEmpty returns a slot to the empty state without issuing a fetch. The
// surface keeps its empty-state instructions visible.
func (c *Coordinator) toEmpty(vp int) {
	c.mu.Lock()
	v, ok := c.viewports[vp]
	if !ok {
		v = &Viewport{Index: vp}
		c.viewports[vp] = v
	}
	closeSubsLocked(v)
	v.gen++
	v.State = StateEmpty
	v.Stack = nil
	v.LastErr = ""
	delete(c.inflight, vp)
	c.mu.Unlock()
	if s, err := c.surfaces.Acquire(vp); err == nil {
		s.SetEmptyMarker(true)
	}
}

func (c *Coordinator) fetchAndComplete(vp int, gen uint64, imageID string) {
	img, err := c.fetcher.Fetch(context.Background(), imageID)
	c.completeLoad(vp, gen, imageID, img, err)
}

// completeLoad applies the side effects of a finished fetch exactly once.
// Completions whose generation no longer matches (the slot was rebound or
// torn down while the fetch was outstanding) are dropped without touching
// the newer binding's state.
func (c *Coordinator) completeLoad(vp int, gen uint64, imageID string, img Image, fetchErr error) {
	c.mu.Lock()
	v, ok := c.viewports[vp]
	if !ok || v.gen != gen {
		c.mu.Unlock()
		c.log.Debug().Int("viewport", vp).Str("image_id", imageID).Msg("dropping stale fetch completion")
		c.publisher.Publish(Event{Name: "load_stale", Viewport: vp, Fields: map[string]any{"image_id": imageID}})
		return
	}
	// The progress registry entry is removed exactly once, on success or error.
	delete(c.inflight, vp)

	if fetchErr != nil {
		v.State = StateError
		v.LastErr = fetchErr.Error()
		c.loadErrorsTotal++
		c.mu.Unlock()
		c.publisher.Publish(Event{Name: "load_error", Viewport: vp, Fields: map[string]any{
			"image_id": imageID, "error": fetchErr.Error(),
		}})
		c.errorHook(vp, imageID, ErrFetchFailed(imageID, fetchErr))
		return
	}

	surface, sok := c.surfaces.Surface(vp)
	if !sok {
		// Surface vanished between fetch issue and completion; treat like a
		// stale completion.
		c.mu.Unlock()
		c.publisher.Publish(Event{Name: "load_stale", Viewport: vp, Fields: map[string]any{"image_id": imageID}})
		return
	}

	v.State = StateDisplayed
	st := *v.Stack
	settings := v.Settings

	// No listeners are attached at this point (Bind closed the previous
	// set), so the initial display render does not feed back into us.
	if err := surface.Display(imageID, settings); err != nil {
		v.State = StateError
		v.LastErr = err.Error()
		c.loadErrorsTotal++
		c.mu.Unlock()
		c.errorHook(vp, imageID, err)
		return
	}
	surface.SetEmptyMarker(false)
	surface.SetStack(st.ImageIDs, st.CurrentIndex)

	closeSubsLocked(v)
	v.renderSub = surface.OnRenderCompleted(c.renderListener(vp, gen))
	v.navSub = surface.OnNavigation(c.navListener(vp, gen))

	if c.refLinesOn {
		if md, mok := c.index.Get(imageID); mok && validFrameOfReference(md) {
			c.refSync.Register(vp, md.Instance.FrameOfReferenceUID)
			v.refLines = true
			// Overlay suppression follows the active viewport; with none
			// active, arbitrate around the slot that just displayed.
			if c.active >= 0 {
				c.showReferenceLinesLocked(c.active)
			} else {
				c.showReferenceLinesLocked(vp)
			}
		} else if v.refLines {
			// The new image carries no usable orientation; the frame
			// association from the previous binding no longer holds.
			c.refSync.Unregister(vp)
			v.refLines = false
		}
	}
	if c.active == vp {
		c.enablePrefetchLocked(vp)
	}
	c.loadsTotal++
	c.mu.Unlock()

	c.bridge.PublishIndex(vp, st.CurrentIndex)
	c.publisher.Publish(Event{Name: "load_displayed", Viewport: vp, Fields: map[string]any{
		"image_id": imageID, "index": st.CurrentIndex,
	}})
}

// validFrameOfReference reports whether metadata carries enough spatial
// orientation for reference lines. Missing pieces mean the feature is
// unavailable for the image, not an error.
func validFrameOfReference(md stack.Metadata) bool {
	return md.Instance.FrameOfReferenceUID != "" && len(md.Instance.ImageOrientation) == 6
}

// renderListener publishes view settings on every render completion; the
// bridge keys entries by viewport, so repeats overwrite.
func (c *Coordinator) renderListener(vp int, gen uint64) func(types.ViewSettings) {
	return func(s types.ViewSettings) {
		c.mu.Lock()
		v, ok := c.viewports[vp]
		if !ok || v.gen != gen {
			c.mu.Unlock()
			return
		}
		v.Settings = s
		c.mu.Unlock()
		c.bridge.PublishSettings(vp, s)
	}
}

// navListener recomputes the cursor from the reported image id and publishes
// it. Single-image stacks are not navigable, so no index is published.
func (c *Coordinator) navListener(vp int, gen uint64) func(string) {
	return func(imageID string) {
		c.mu.Lock()
		v, ok := c.viewports[vp]
		if !ok || v.gen != gen || v.Stack == nil {
			c.mu.Unlock()
			return
		}
		idx := v.Stack.IndexOf(imageID)
		if idx < 0 {
			c.mu.Unlock()
			return
		}
		v.Stack.CurrentIndex = idx
		single := len(v.Stack.ImageIDs) == 1
		c.mu.Unlock()
		if !single {
			c.bridge.PublishIndex(vp, idx)
		}
	}
}

func closeSubsLocked(v *Viewport) {
	if v.renderSub != nil {
		v.renderSub.Close()
		v.renderSub = nil
	}
	if v.navSub != nil {
		v.navSub.Close()
		v.navSub = nil
	}
}
