package types

// ViewportStatus summarizes one viewport slot for /status.
type ViewportStatus struct {
	// Viewport slot index.
	// example: 0
	Index int `json:"index" example:"0"`
	// Lifecycle state (empty, loading, displayed, error).
	// example: displayed
	State string `json:"state" example:"displayed"`
	// Study currently bound, if any.
	StudyUID string `json:"study_uid,omitempty"`
	// Series currently bound, if any.
	SeriesUID string `json:"series_uid,omitempty"`
	// Image ids in display order.
	ImageIDs []string `json:"image_ids,omitempty"`
	// 0-based cursor into ImageIDs.
	// example: 1
	CurrentIndex int `json:"current_index" example:"1"`
	// Image currently being fetched, empty when no fetch is outstanding.
	InflightImageID string `json:"inflight_image_id,omitempty"`
	// Whether stack prefetch is running for this viewport.
	Prefetching bool `json:"prefetching"`
	// Last load error, present only in the error state.
	LastError string `json:"last_error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Mounted viewport slots in index order.
	Viewports []ViewportStatus `json:"viewports"`
	// Index of the active viewport, -1 when none is active.
	// example: 0
	ActiveViewport int `json:"active_viewport" example:"0"`
	// Whether reference lines are globally enabled.
	ReferenceLinesEnabled bool `json:"reference_lines_enabled"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total successful loads since start.
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// Total failed loads since start.
	// example: 1
	LoadErrorsTotal uint64 `json:"load_errors_total" example:"1"`
}
