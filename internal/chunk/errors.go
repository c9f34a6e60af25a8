package chunk

import "errors"

var (
	// ErrEmptyPayload is returned by Send for a zero-length payload.
	ErrEmptyPayload = errors.New("chunk: empty payload")
	// ErrPayloadTooLarge is returned by Send when payload exceeds the
	// chunk size limit.
	ErrPayloadTooLarge = errors.New("chunk: payload too large")
)
