package attach

import "errors"

var (
	// ErrAlreadyStarted reports a second Start without an intervening
	// Stop; only one host registration may exist at a time.
	ErrAlreadyStarted = errors.New("attach: controller already started")

	// ErrNotStarted reports Stop on a controller that holds no
	// registration.
	ErrNotStarted = errors.New("attach: controller not started")
)
