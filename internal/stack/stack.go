package stack

import (
	"viewerd/pkg/types"
)

// Stack is an ordered sequence of image ids with a current-position cursor.
// The id sequence is append-only once built for a given load.
type Stack struct {
	StudyUID     string
	SeriesUID    string
	ImageIDs     []string
	CurrentIndex int
}

// CurrentImageID returns the image id under the cursor.
func (s *Stack) CurrentImageID() string {
	return s.ImageIDs[s.CurrentIndex]
}

// IndexOf returns the 0-based position of imageID, or -1 when absent.
func (s *Stack) IndexOf(imageID string) int {
	for i, id := range s.ImageIDs {
		if id == imageID {
			return i
		}
	}
	return -1
}

// Metadata describes one image for the render layer: its owning
// series/study, the total count, and its 1-based position.
type Metadata struct {
	Instance   types.Instance
	StudyUID   string
	SeriesUID  string
	NumImages  int
	ImageIndex int
}

// invalidRequestError marks a bind request that must not reach the fetch
// stage (missing study/series or empty series).
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return "invalid request: " + e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates a request rejected before fetch.
func IsInvalidRequest(err error) bool {
	_, ok := err.(invalidRequestError)
	return ok
}

// ImageID derives the stable image identifier for an instance. The fetch URL
// is the natural key; instances without one fall back to a wado-style id.
func ImageID(inst types.Instance) string {
	if inst.URL != "" {
		return inst.URL
	}
	return "wado:" + inst.SOPInstanceUID
}

// Build converts a (study, series, start-index) request into an ordered
// stack plus one metadata record per image. The cursor is clamped to
// [0, len-1]. Callers must not invoke the load path when Build fails.
func Build(study types.Study, series types.Series, startIndex int) (Stack, []Metadata, error) {
	if study.StudyUID == "" {
		return Stack{}, nil, ErrInvalidRequest("missing study")
	}
	if series.SeriesUID == "" {
		return Stack{}, nil, ErrInvalidRequest("missing series")
	}
	if len(series.Instances) == 0 {
		return Stack{}, nil, ErrInvalidRequest("series has no instances")
	}
	n := len(series.Instances)
	ids := make([]string, 0, n)
	mds := make([]Metadata, 0, n)
	for i, inst := range series.Instances {
		ids = append(ids, ImageID(inst))
		mds = append(mds, Metadata{
			Instance:   inst,
			StudyUID:   study.StudyUID,
			SeriesUID:  series.SeriesUID,
			NumImages:  n,
			ImageIndex: i + 1,
		})
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex > n-1 {
		startIndex = n - 1
	}
	return Stack{
		StudyUID:     study.StudyUID,
		SeriesUID:    series.SeriesUID,
		ImageIDs:     ids,
		CurrentIndex: startIndex,
	}, mds, nil
}
