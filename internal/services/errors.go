package services

import "errors"

// Dashboard service errors
var (
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrUnknownArea      = errors.New("unknown subject area")
	ErrInvalidSelection = errors.New("invalid selection")
)
