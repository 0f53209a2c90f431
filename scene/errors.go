package scene

import "errors"

var (
	// ErrWindowNotMeasured is returned when the window has no positive size at startup.
	ErrWindowNotMeasured = errors.New("window size not measured")

	// ErrCellTooSmall is returned when a grid cell is no larger than the margin.
	ErrCellTooSmall = errors.New("grid cell smaller than margin")

	// ErrNoCamera is returned when startup does not find exactly one bloom camera.
	ErrNoCamera = errors.New("no camera configured")
)
