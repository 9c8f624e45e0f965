package capture

import "errors"

var (
	ErrNoSource      = errors.New("capture: listener has no event source")
	ErrRelayAttached = errors.New("capture: another relay is already attached")
	ErrUnknownEvent  = errors.New("capture: unknown event name")
	ErrNilHandler    = errors.New("capture: nil handler")
)
