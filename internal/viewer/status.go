package viewer

import (
	"sort"
	"time"

	"viewerd/pkg/types"
)

// Status builds a detailed status response for /status.
func (c *Coordinator) Status() types.StatusResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp := types.StatusResponse{
		ActiveViewport:        c.active,
		ReferenceLinesEnabled: c.refLinesOn,
		UptimeSeconds:         int64(time.Since(c.startTime).Seconds()),
		ServerTimeUnix:        time.Now().Unix(),
		LoadsTotal:            c.loadsTotal,
		LoadErrorsTotal:       c.loadErrorsTotal,
	}
	resp.Viewports = make([]types.ViewportStatus, 0, len(c.viewports))
	for i, v := range c.viewports {
		vs := types.ViewportStatus{
			Index:       i,
			State:       string(v.State),
			Prefetching: v.prefetching,
			LastError:   v.LastErr,
		}
		if v.Stack != nil {
			vs.StudyUID = v.Stack.StudyUID
			vs.SeriesUID = v.Stack.SeriesUID
			vs.ImageIDs = append([]string(nil), v.Stack.ImageIDs...)
			vs.CurrentIndex = v.Stack.CurrentIndex
		}
		if id, ok := c.inflight[i]; ok {
			vs.InflightImageID = id
		}
		resp.Viewports = append(resp.Viewports, vs)
	}
	sort.Slice(resp.Viewports, func(a, b int) bool {
		return resp.Viewports[a].Index < resp.Viewports[b].Index
	})
	return resp
}
