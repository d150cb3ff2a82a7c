package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrQueryService is returned when the external SQL service fails at
// the plumbing level (unreachable, malformed response).
var ErrQueryService = errors.New("query service failure")
