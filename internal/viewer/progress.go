package viewer

import "sort"

// RouteProgress routes an inbound (imageID, percent) broadcast to every
// viewport whose progress-registry entry matches the image, and returns the
// slot indexes reached. Viewports with no matching in-flight entry are never
// notified.
func (c *Coordinator) RouteProgress(imageID string, percent int) []int {
	c.mu.Lock()
	var hits []int
	for vp, id := range c.inflight {
		if id == imageID {
			hits = append(hits, vp)
		}
	}
	c.mu.Unlock()
	sort.Ints(hits)
	for _, vp := range hits {
		if s, ok := c.surfaces.Surface(vp); ok {
			s.ShowProgress(imageID, percent)
		}
	}
	return hits
}
