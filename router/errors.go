package router

import "errors"

var (
	// ErrNilBackend is returned by New when no backend is supplied.
	ErrNilBackend = errors.New("router: backend is required")
	// ErrInvalidPath is returned when a path has fewer than two tokens.
	ErrInvalidPath = errors.New("router: path must contain at least two tokens")
	// ErrInsufficientOutputAmount is returned when a resolved output falls
	// below the caller's declared minimum.
	ErrInsufficientOutputAmount = errors.New("router: insufficient output amount")
	// ErrExcessiveInputAmount is returned when a resolved input exceeds the
	// caller's declared maximum.
	ErrExcessiveInputAmount = errors.New("router: excessive input amount")
	// ErrInsufficientAAmount is returned when a liquidity deposit would
	// contribute less of token A than the caller's declared minimum.
	ErrInsufficientAAmount = errors.New("router: insufficient A amount")
	// ErrInsufficientBAmount is returned when a liquidity deposit would
	// contribute less of token B than the caller's declared minimum.
	ErrInsufficientBAmount = errors.New("router: insufficient B amount")
)
