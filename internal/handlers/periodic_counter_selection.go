package handlers

import (
	"context"
	"fmt"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
	"github.com/ARM-software/armnn-sub019/internal/wire"
)

// PeriodicCounterSelection handles (family=0, id=4): installs a new
// sampling period and counter UID selection. Allowed only while Active.
// Payload: { period_us: u32, uids: [u16] }. An empty UID list stops the
// capture worker.
type PeriodicCounterSelection struct {
	Svc ServiceContext
}

func (h *PeriodicCounterSelection) Handle(ctx context.Context, payload []byte) error {
	if h.Svc.State() != statemachine.Active {
		return &WrongStateError{Handler: "PeriodicCounterSelection", State: h.Svc.State()}
	}

	periodUs, n, err := wire.GetUint32(payload)
	if err != nil {
		return fmt.Errorf("handlers: PeriodicCounterSelection: period: %w", err)
	}
	payload = payload[n:]

	count, n, err := wire.GetUint16(payload)
	if err != nil {
		return fmt.Errorf("handlers: PeriodicCounterSelection: count: %w", err)
	}
	payload = payload[n:]

	uids := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		uid, n, err := wire.GetUint16(payload)
		if err != nil {
			return fmt.Errorf("handlers: PeriodicCounterSelection: uid %d: %w", i, err)
		}
		uids = append(uids, uid)
		payload = payload[n:]
	}

	return h.Svc.SetPeriodicSelection(periodUs, uids)
}
