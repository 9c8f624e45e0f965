package capture_agent

import "errors"

var (
	ErrAccessDenied = errors.New("notification access not granted")
	ErrSourceBusy   = errors.New("source already has an observer")
)
