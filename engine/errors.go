package engine

import "errors"

// ErrSessionNotFound is returned by Continue and the state accessors when no
// Start has been issued for the session identifier. A Continue on an unknown
// session never creates one silently.
var ErrSessionNotFound = errors.New("session not found")
