package dao

import "errors"

// ErrSessionNotFound is returned by the strict history/clear operations
// when the session id was never created. Turn processing never returns it;
// unknown sessions are auto-created there.
var ErrSessionNotFound = errors.New("session not found")
