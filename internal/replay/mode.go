// Package replay records live feed traffic to disk and plays it back
// deterministically.
package replay

import (
	dErrors "birdnest/pkg/domain-errors"
)

// Mode is the process-wide replay state, fixed at startup.
type Mode string

const (
	ModeOff       Mode = "off"
	ModeRecording Mode = "recording"
	ModeReplaying Mode = "replaying"
)

// ParseMode resolves the replay and record switches. Asking for both is a
// configuration error.
func ParseMode(replay, record bool) (Mode, error) {
	switch {
	case replay && record:
		return ModeOff, dErrors.New(dErrors.CodeInvalidConfig,
			"cannot replay and record at the same time, remove either --replay, BIRDNEST_REPLAY or --record")
	case replay:
		return ModeReplaying, nil
	case record:
		return ModeRecording, nil
	default:
		return ModeOff, nil
	}
}
