package domain

import "errors"

var (
	// ErrInputUnreadable is returned when the input file cannot be opened or read
	ErrInputUnreadable = errors.New("input file unreadable")

	// ErrEmptyRow is returned when a row carries no image references
	ErrEmptyRow = errors.New("row has no image references")

	// ErrInvalidImageRef is returned when an image reference is neither a
	// valid http(s) URL, a data URL, nor a readable local file
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrTransport is returned when the inference call fails at the network or service level
	ErrTransport = errors.New("inference request failed")

	// ErrRefusal is returned when the inference service declines to produce a conforming answer
	ErrRefusal = errors.New("inference service refused")

	// ErrParse is returned when a payload cannot be interpreted as a product record
	ErrParse = errors.New("payload does not match product record")

	// ErrStoreUnavailable is returned when the document store cannot be reached
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrProductNotFound is returned when no stored product matches a lookup
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
