package floor

import "errors"

var (
	ErrOutOfBounds            = errors.New("coordinate outside the grid")
	ErrEndpointsUninitialized = errors.New("neither path endpoint holds a room")
	ErrStartOutOfBounds       = errors.New("start coordinate outside the generation bounds")
	ErrDisconnected           = errors.New("room unreachable from the start room")

	// ErrRoleOverRequest is soft: the request was clamped and generation went on.
	ErrRoleOverRequest = errors.New("more special rooms requested than eligible rooms")
)
