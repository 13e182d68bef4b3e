package handlers

import (
	"context"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// ActivateTimelineReporting handles (family=0, id=6): sets the timeline
// flag. Allowed only while Active. On first activation, the Service
// emits the timeline-message-directory package and the well-known
// baseline exactly once.
type ActivateTimelineReporting struct {
	Svc ServiceContext
}

func (h *ActivateTimelineReporting) Handle(ctx context.Context, payload []byte) error {
	if h.Svc.State() != statemachine.Active {
		return &WrongStateError{Handler: "ActivateTimelineReporting", State: h.Svc.State()}
	}
	return h.Svc.ActivateTimeline()
}
