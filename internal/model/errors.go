package model

import "errors"

// Common errors used across the application
var (
	// Link errors
	ErrLinkNotFound = errors.New("link not found")

	// Directory errors
	ErrDirectoryUnavailable = errors.New("identity directory unavailable")
	ErrUnauthorized         = errors.New("directory credentials rejected")

	// Platform errors
	ErrGatewayClosed  = errors.New("platform gateway is not connected")
	ErrMemberNotFound = errors.New("identity not found on the platform")
)
