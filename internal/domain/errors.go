package domain

import "errors"

var (
	// ErrUnknownQuestion is returned when a referenced question ID is not in the catalog.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidPayload is returned for missing or malformed submission fields.
	ErrInvalidPayload = errors.New("invalid payload")
)
