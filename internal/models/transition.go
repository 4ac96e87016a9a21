package models

import "errors"

type LifecycleEvent string

const (
	EventExpire LifecycleEvent = "expire"
	EventRevoke LifecycleEvent = "revoke"
)

// ErrIllegalTransition is returned for transitions that are neither legal
// nor a re-entry into the current terminal state.
var ErrIllegalTransition = errors.New("illegal status transition")

// Transition is the delivery state machine. Re-entering a terminal state is
// a no-op success (changed=false), so racing triggers converge.
//
//	active  + expire -> expired
//	active  + revoke -> revoked
//	expired + expire -> expired (no-op)
//	revoked + revoke -> revoked (no-op)
//	revoked + expire -> revoked (no-op)
//	expired + revoke -> error
func Transition(current DeliveryStatus, event LifecycleEvent) (DeliveryStatus, bool, error) {
	if current.Terminal() {
		if event == EventRevoke && current == StatusExpired {
			return current, false, ErrIllegalTransition
		}
		return current, false, nil
	}

	switch {
	case current == StatusActive && event == EventExpire:
		return StatusExpired, true, nil
	case current == StatusActive && event == EventRevoke:
		return StatusRevoked, true, nil
	default:
		return current, false, ErrIllegalTransition
	}
}
