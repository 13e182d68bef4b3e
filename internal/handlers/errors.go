package handlers

import (
	"fmt"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// WrongStateError is returned when a handler is invoked while the
// profiling state machine is in a state that handler doesn't permit.
// Fatal to the receive loop, per the dispatch package's error
// classification.
type WrongStateError struct {
	Handler string
	State   statemachine.State
}

func (e *WrongStateError) Error() string {
	return fmt.Sprintf("handlers: %s: disallowed in state %s", e.Handler, e.State)
}
