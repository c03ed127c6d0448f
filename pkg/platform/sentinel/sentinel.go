package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Feed clients, caches and the replay
// engine return these (optionally wrapped) so callers can branch with errors.Is
// without depending on the producing package:
// - ErrNotFound: the upstream or a persisted document has no record for the key
// - ErrUnavailable: the upstream answered with a failure status
// - ErrEmpty: a required collection (e.g. replay history) has no entries
//
// For client-facing validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrEmpty       = errors.New("empty")
)
