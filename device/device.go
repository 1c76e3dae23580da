// Package device implements the peripheral controllers: the LPT line
// printer, the RX8E floppy controller and the TC08 DECtape controller.
// Each is a cpu.Device plus host-side admin operations.
package device

import "errors"

// Admin operation errors shared by the controllers.
var (
	ErrInvalidDrive   = errors.New("invalid drive")
	ErrInvalidTrack   = errors.New("invalid track")
	ErrInvalidSector  = errors.New("invalid sector")
	ErrInvalidBlock   = errors.New("invalid block")
	ErrNotAttached    = errors.New("drive not attached")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrReadOnlyImage  = errors.New("image is read-only")
)
