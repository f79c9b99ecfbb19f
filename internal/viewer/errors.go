package viewer

// studyNotFoundError signals a bind naming an unknown study for 404 mapping.
type studyNotFoundError struct{ uid string }

func (e studyNotFoundError) Error() string { return "study not found: " + e.uid }

// ErrStudyNotFound constructs a studyNotFoundError.
func ErrStudyNotFound(uid string) error { return studyNotFoundError{uid: uid} }

// IsStudyNotFound reports whether the error indicates a missing study.
func IsStudyNotFound(err error) bool {
	_, ok := err.(studyNotFoundError)
	return ok
}

// seriesNotFoundError signals a bind naming an unknown series.
type seriesNotFoundError struct{ uid string }

func (e seriesNotFoundError) Error() string { return "series not found: " + e.uid }

// ErrSeriesNotFound constructs a seriesNotFoundError.
func ErrSeriesNotFound(uid string) error { return seriesNotFoundError{uid: uid} }

// IsSeriesNotFound reports whether the error indicates a missing series.
func IsSeriesNotFound(err error) bool {
	_, ok := err.(seriesNotFoundError)
	return ok
}

// viewportNotFoundError signals an operation on a slot index outside the
// configured range or one that was never mounted.
type viewportNotFoundError struct{ index int }

func (e viewportNotFoundError) Error() string {
	return "viewport not found: " + itoa(e.index)
}

// ErrViewportNotFound constructs a viewportNotFoundError.
func ErrViewportNotFound(index int) error { return viewportNotFoundError{index: index} }

// IsViewportNotFound reports whether the error indicates an unknown viewport.
func IsViewportNotFound(err error) bool {
	_, ok := err.(viewportNotFoundError)
	return ok
}

// fetchError wraps an image fetch failure with the image that failed.
type fetchError struct {
	imageID string
	err     error
}

func (e fetchError) Error() string { return "fetch " + e.imageID + ": " + e.err.Error() }
func (e fetchError) Unwrap() error { return e.err }

// ErrFetchFailed constructs a fetchError.
func ErrFetchFailed(imageID string, err error) error { return fetchError{imageID: imageID, err: err} }

// IsFetchFailed reports whether err is an image fetch failure.
func IsFetchFailed(err error) bool {
	_, ok := err.(fetchError)
	return ok
}

// fast integer to ascii for small slot indexes
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
