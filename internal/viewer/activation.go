package viewer

// Activate makes a viewport the single active one. Activating the already
// active viewport is a no-op: no highlight churn, no arbiter side effects.
// The whole sequence runs under the coordinator lock, so two activations
// never interleave their side effects.
func (c *Coordinator) Activate(vp int) error {
	if vp < 0 || vp >= c.maxViewports {
		return ErrViewportNotFound(vp)
	}
	c.mu.Lock()
	if c.active == vp {
		c.mu.Unlock()
		return nil
	}
	c.active = vp

	// Clear highlighting everywhere, then highlight the new active slot.
	for i := range c.viewports {
		if i == vp {
			continue
		}
		if s, ok := c.surfaces.Surface(i); ok {
			s.SetHighlight(false)
		}
	}
	if s, err := c.surfaces.Acquire(vp); err == nil {
		s.SetHighlight(true)
	}

	c.enablePrefetchLocked(vp)
	c.showReferenceLinesLocked(vp)
	c.mu.Unlock()

	c.publisher.Publish(Event{Name: "activate", Viewport: vp, Fields: map[string]any{}})
	return nil
}
