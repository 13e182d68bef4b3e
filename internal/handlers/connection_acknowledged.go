package handlers

import (
	"context"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// ConnectionAcknowledged handles (family=0, id=1): the monitor's
// acknowledgement of the stream-metadata handshake. Allowed only while
// WaitingForAck.
type ConnectionAcknowledged struct {
	Svc ServiceContext
}

func (h *ConnectionAcknowledged) Handle(ctx context.Context, payload []byte) error {
	if h.Svc.State() != statemachine.WaitingForAck {
		return &WrongStateError{Handler: "ConnectionAcknowledged", State: h.Svc.State()}
	}
	return h.Svc.HandleConnectionAcknowledged()
}
