package viewer

// Unbind tears a viewport slot down: best-effort playback stop, release of
// the render surface, and removal of every trace of the slot from the
// registries and synchronizers. Teardown failures are logged, never fatal;
// nothing may block the surface release.
func (c *Coordinator) Unbind(vp int) error {
	c.mu.Lock()
	v, ok := c.viewports[vp]
	if !ok {
		c.mu.Unlock()
		return ErrViewportNotFound(vp)
	}
	// Invalidate any outstanding fetch so its completion is dropped.
	v.gen++
	closeSubsLocked(v)
	delete(c.inflight, vp)
	delete(c.viewports, vp)
	if c.active == vp {
		c.active = -1
	}
	prefetching := v.prefetching
	refRegistered := v.refLines
	c.mu.Unlock()

	if s, sok := c.surfaces.Surface(vp); sok {
		if err := s.StopPlayback(); err != nil {
			c.log.Warn().Int("viewport", vp).Err(err).Msg("stop playback failed during teardown")
		}
	}
	if prefetching && c.prefetch != nil {
		c.prefetch.Disable(vp)
	}
	if refRegistered {
		c.refSync.Unregister(vp)
	}
	if err := c.surfaces.Release(vp); err != nil {
		c.log.Warn().Int("viewport", vp).Err(err).Msg("surface release failed")
	}
	c.bridge.Clear(vp)
	c.publisher.Publish(Event{Name: "unbind", Viewport: vp, Fields: map[string]any{}})
	return nil
}
