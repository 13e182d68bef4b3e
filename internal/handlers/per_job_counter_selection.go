package handlers

import (
	"context"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// PerJobCounterSelection handles (family=0, id=5). Reserved: accepted
// and ignored once the gating state check passes, matching the source
// behavior of validating the packet without acting on it.
type PerJobCounterSelection struct {
	Svc ServiceContext
}

func (h *PerJobCounterSelection) Handle(ctx context.Context, payload []byte) error {
	if h.Svc.State() != statemachine.Active {
		return &WrongStateError{Handler: "PerJobCounterSelection", State: h.Svc.State()}
	}
	return nil
}
