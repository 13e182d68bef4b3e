package handlers

import (
	"context"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// RequestCounterDirectory handles (family=0, id=3): an explicit request
// to re-send the full counter directory. Allowed only while Active.
type RequestCounterDirectory struct {
	Svc ServiceContext
}

func (h *RequestCounterDirectory) Handle(ctx context.Context, payload []byte) error {
	if h.Svc.State() != statemachine.Active {
		return &WrongStateError{Handler: "RequestCounterDirectory", State: h.Svc.State()}
	}
	return h.Svc.SendCounterDirectory()
}
