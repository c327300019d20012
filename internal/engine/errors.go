package engine

import "fmt"

// SurfaceUnavailableError means the render target could not be created.
// It is fatal for the export call that hit it.
type SurfaceUnavailableError struct {
	Width, Height int
	Err           error
}

func (e *SurfaceUnavailableError) Error() string {
	return fmt.Sprintf("surface %dx%d unavailable: %v", e.Width, e.Height, e.Err)
}

func (e *SurfaceUnavailableError) Unwrap() error { return e.Err }

// EncodeError means a rendered surface could not be turned into bytes. It
// is fatal for that artifact only.
type EncodeError struct {
	Name string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Name, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
