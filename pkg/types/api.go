package types

// BindRequest asks the coordinator to display a series in a viewport.
type BindRequest struct {
	// Study to bind.
	// example: 1.2.840.113619.2.5.1762583153.215519.978957063.100
	StudyUID string `json:"study_uid" example:"1.2.840.113619.2.5.1762583153.215519.978957063.100"`
	// Series within the study.
	// example: 1.2.840.113619.2.5.1762583153.215519.978957063.120
	SeriesUID string `json:"series_uid" example:"1.2.840.113619.2.5.1762583153.215519.978957063.120"`
	// 0-based index of the image to display first. Clamped to the stack bounds.
	// example: 0
	StartIndex int `json:"start_index,omitempty" example:"0"`
	// Optional initial view settings; defaults are used when omitted.
	Settings *ViewSettings `json:"settings,omitempty"`
}

// ProgressRequest is an inbound fetch-progress broadcast.
type ProgressRequest struct {
	// Image the progress report is about.
	// example: wado:1.2.840.113619.2.5.1762583153.215519.978957063.121
	ImageID string `json:"image_id" example:"wado:1.2.840.113619.2.5.1762583153.215519.978957063.121"`
	// Percentage complete, 0-100.
	// example: 42
	Percent int `json:"percent" example:"42"`
}

// ProgressResponse reports which viewports a broadcast reached.
type ProgressResponse struct {
	// Viewport indexes whose in-flight image matched the broadcast.
	Viewports []int `json:"viewports"`
}

// StudiesResponse wraps the list returned by GET /studies.
type StudiesResponse struct {
	// Studies known to the store.
	Studies []Study `json:"studies"`
}

// SessionEntry is one persisted key/value pair from the persistence bridge.
type SessionEntry struct {
	// Viewport the entry belongs to.
	// example: 0
	Viewport int `json:"viewport" example:"0"`
	// Persisted key (e.g. "image_index", "settings").
	// example: image_index
	Key string `json:"key" example:"image_index"`
	// Persisted value, JSON-encodable.
	Value any `json:"value"`
}

// SessionResponse is returned by GET /session for UI reconstruction.
type SessionResponse struct {
	Entries []SessionEntry `json:"entries"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
