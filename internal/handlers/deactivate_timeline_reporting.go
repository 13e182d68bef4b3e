package handlers

import (
	"context"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// DeactivateTimelineReporting handles (family=0, id=7): clears the
// timeline flag. Allowed only while Active.
type DeactivateTimelineReporting struct {
	Svc ServiceContext
}

func (h *DeactivateTimelineReporting) Handle(ctx context.Context, payload []byte) error {
	if h.Svc.State() != statemachine.Active {
		return &WrongStateError{Handler: "DeactivateTimelineReporting", State: h.Svc.State()}
	}
	return h.Svc.DeactivateTimeline()
}
