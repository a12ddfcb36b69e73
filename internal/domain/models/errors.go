package models

import "errors"

var (
	// ErrNoData means the symbol could not be resolved to any price data.
	// The boundary maps it to a not-found class response.
	ErrNoData = errors.New("no price data available")

	// ErrInsufficientData means a series exists but is too short or malformed
	// for any simulation period. Fatal for that symbol only; a multi-symbol
	// batch keeps processing the rest.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrInvalidConfig means the simulation parameters were rejected before
	// any state was created. Fatal for the whole request.
	ErrInvalidConfig = errors.New("invalid simulation config")
)
