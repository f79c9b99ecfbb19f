package types

// Instance is a single image belonging to a series.
type Instance struct {
	// Unique identifier of the instance within its series.
	// example: 1.2.840.113619.2.5.1762583153.215519.978957063.121
	SOPInstanceUID string `json:"sop_instance_uid" yaml:"sop_instance_uid" example:"1.2.840.113619.2.5.1762583153.215519.978957063.121"`
	// URL the image payload can be fetched from.
	// example: http://imagecache:8042/instances/121/frames/1
	URL string `json:"url" yaml:"url" example:"http://imagecache:8042/instances/121/frames/1"`
	// Frame of reference shared by spatially related images; empty when unknown.
	// example: 1.2.840.113619.2.5.1762583153.215519.978957063.2
	FrameOfReferenceUID string `json:"frame_of_reference_uid,omitempty" yaml:"frame_of_reference_uid,omitempty" example:"1.2.840.113619.2.5.1762583153.215519.978957063.2"`
	// Row/column direction cosines, 6 values; empty when the image carries no orientation.
	ImageOrientation []float64 `json:"image_orientation,omitempty" yaml:"image_orientation,omitempty"`
}

// Series is an ordered list of instances under one study.
type Series struct {
	// Unique identifier of the series.
	// example: 1.2.840.113619.2.5.1762583153.215519.978957063.120
	SeriesUID string `json:"series_uid" yaml:"series_uid" example:"1.2.840.113619.2.5.1762583153.215519.978957063.120"`
	// Human-readable description.
	// example: AX T2 FLAIR
	Description string `json:"description,omitempty" yaml:"description,omitempty" example:"AX T2 FLAIR"`
	// Acquisition modality code.
	// example: MR
	Modality string `json:"modality,omitempty" yaml:"modality,omitempty" example:"MR"`
	// Ordered instances; display order is the slice order.
	Instances []Instance `json:"instances" yaml:"instances"`
}

// Study groups the series acquired in one exam.
type Study struct {
	// Unique identifier of the study.
	// example: 1.2.840.113619.2.5.1762583153.215519.978957063.100
	StudyUID string `json:"study_uid" yaml:"study_uid" example:"1.2.840.113619.2.5.1762583153.215519.978957063.100"`
	// Patient display name.
	// example: DOE^JANE
	PatientName string `json:"patient_name,omitempty" yaml:"patient_name,omitempty" example:"DOE^JANE"`
	// Study-level description.
	// example: BRAIN W/O CONTRAST
	Description string `json:"description,omitempty" yaml:"description,omitempty" example:"BRAIN W/O CONTRAST"`
	// Series contained in the study.
	Series []Series `json:"series" yaml:"series"`
}

// ViewSettings is the pan/zoom/window-level triple applied to a render target.
type ViewSettings struct {
	// Horizontal pan offset in canvas pixels.
	PanX float64 `json:"pan_x" yaml:"pan_x"`
	// Vertical pan offset in canvas pixels.
	PanY float64 `json:"pan_y" yaml:"pan_y"`
	// Zoom factor; 1.0 is fit-to-window.
	// example: 1.0
	Zoom float64 `json:"zoom" yaml:"zoom" example:"1.0"`
	// Window width for intensity mapping.
	// example: 400
	WindowWidth float64 `json:"window_width" yaml:"window_width" example:"400"`
	// Window center for intensity mapping.
	// example: 40
	WindowCenter float64 `json:"window_center" yaml:"window_center" example:"40"`
}

// DefaultViewSettings returns the settings applied when a bind carries none.
func DefaultViewSettings() ViewSettings {
	return ViewSettings{Zoom: 1.0, WindowWidth: 400, WindowCenter: 40}
}
