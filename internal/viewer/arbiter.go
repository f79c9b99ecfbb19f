package viewer

// enablePrefetchLocked enforces the at-most-one-prefetcher invariant:
// prefetch is disabled on every other mounted viewport that has a render
// surface, then enabled on vp only if its stack has more than one image.
// Disable-all-then-enable-one, never a toggle.
func (c *Coordinator) enablePrefetchLocked(vp int) {
	if c.prefetch == nil {
		return
	}
	for i, other := range c.viewports {
		if i == vp {
			continue
		}
		if _, ok := c.surfaces.Surface(i); !ok {
			continue
		}
		c.prefetch.Disable(i)
		if other.prefetching {
			other.prefetching = false
			c.publisher.Publish(Event{Name: "prefetch_disable", Viewport: i, Fields: map[string]any{}})
		}
	}
	v, ok := c.viewports[vp]
	if !ok || v.Stack == nil || len(v.Stack.ImageIDs) <= 1 {
		// Prefetch is meaningless for single-image stacks; stop any run
		// left over from a previous binding of this slot.
		c.prefetch.Disable(vp)
		if ok && v.prefetching {
			v.prefetching = false
			c.publisher.Publish(Event{Name: "prefetch_disable", Viewport: vp, Fields: map[string]any{}})
		}
		return
	}
	c.prefetch.Enable(vp, *v.Stack)
	if !v.prefetching {
		v.prefetching = true
		c.publisher.Publish(Event{Name: "prefetch_enable", Viewport: vp, Fields: map[string]any{}})
	}
}

// showReferenceLinesLocked disables the overlay on vp itself (it is the
// image being compared against) and enables it on every other mounted
// viewport with a valid displayed image. A viewport with no displayed image
// or a failed surface lookup is silently skipped: that is an expected race
// during concurrent mount/unmount.
func (c *Coordinator) showReferenceLinesLocked(vp int) {
	if !c.refLinesOn {
		return
	}
	c.refSync.SetOverlay(vp, false)
	for i, other := range c.viewports {
		if i == vp {
			continue
		}
		if other.State != StateDisplayed || other.Stack == nil {
			continue
		}
		if _, ok := c.surfaces.Surface(i); !ok {
			continue
		}
		c.refSync.SetOverlay(i, true)
	}
	// A slot with no binding has nothing to arbitrate around; skip the
	// event so activating an empty slot stays silent.
	if v, ok := c.viewports[vp]; !ok || v.Stack == nil {
		return
	}
	c.publisher.Publish(Event{Name: "reflines_show", Viewport: vp, Fields: map[string]any{}})
}
