package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/ARM-software/armnn-sub019/internal/statemachine"
	"github.com/ARM-software/armnn-sub019/internal/wire"
)

type fakeService struct {
	state statemachine.State

	ackCalled        bool
	ackErr           error
	directoryCalled  bool
	directoryErr     error
	periodUs         uint32
	uids             []uint16
	selectionErr     error
	activateCalled   bool
	activateErr      error
	deactivateCalled bool
	deactivateErr    error
}

func (s *fakeService) State() statemachine.State { return s.state }

func (s *fakeService) HandleConnectionAcknowledged() error {
	s.ackCalled = true
	return s.ackErr
}

func (s *fakeService) SendCounterDirectory() error {
	s.directoryCalled = true
	return s.directoryErr
}

func (s *fakeService) SetPeriodicSelection(periodUs uint32, uids []uint16) error {
	s.periodUs = periodUs
	s.uids = uids
	return s.selectionErr
}

func (s *fakeService) ActivateTimeline() error {
	s.activateCalled = true
	return s.activateErr
}

func (s *fakeService) DeactivateTimeline() error {
	s.deactivateCalled = true
	return s.deactivateErr
}

func TestConnectionAcknowledgedRequiresWaitingForAck(t *testing.T) {
	svc := &fakeService{state: statemachine.NotConnected}
	h := &ConnectionAcknowledged{Svc: svc}

	err := h.Handle(context.Background(), nil)
	var wrongState *WrongStateError
	if !errors.As(err, &wrongState) {
		t.Fatalf("expected WrongStateError, got %v", err)
	}
	if svc.ackCalled {
		t.Error("handler called through to service despite wrong state")
	}
}

func TestConnectionAcknowledgedSucceedsInWaitingForAck(t *testing.T) {
	svc := &fakeService{state: statemachine.WaitingForAck}
	h := &ConnectionAcknowledged{Svc: svc}

	if err := h.Handle(context.Background(), nil); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !svc.ackCalled {
		t.Error("expected HandleConnectionAcknowledged to be called")
	}
}

func TestRequestCounterDirectoryRequiresActive(t *testing.T) {
	svc := &fakeService{state: statemachine.WaitingForAck}
	h := &RequestCounterDirectory{Svc: svc}

	if err := h.Handle(context.Background(), nil); err == nil {
		t.Fatal("expected WrongState error")
	}
	if svc.directoryCalled {
		t.Error("directory sent despite wrong state")
	}
}

func TestRequestCounterDirectorySucceedsWhenActive(t *testing.T) {
	svc := &fakeService{state: statemachine.Active}
	h := &RequestCounterDirectory{Svc: svc}

	if err := h.Handle(context.Background(), nil); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !svc.directoryCalled {
		t.Error("expected SendCounterDirectory to be called")
	}
}

func encodeSelectionPayload(periodUs uint32, uids []uint16) []byte {
	buf := wire.PutUint32(nil, periodUs)
	buf = wire.PutUint16(buf, uint16(len(uids)))
	for _, u := range uids {
		buf = wire.PutUint16(buf, u)
	}
	return buf
}

func TestPeriodicCounterSelectionParsesPayload(t *testing.T) {
	svc := &fakeService{state: statemachine.Active}
	h := &PeriodicCounterSelection{Svc: svc}

	payload := encodeSelectionPayload(10_000, []uint16{7, 9})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if svc.periodUs != 10_000 {
		t.Errorf("periodUs = %d, want 10000", svc.periodUs)
	}
	if len(svc.uids) != 2 || svc.uids[0] != 7 || svc.uids[1] != 9 {
		t.Errorf("uids = %v, want [7 9]", svc.uids)
	}
}

func TestPeriodicCounterSelectionEmptySelection(t *testing.T) {
	svc := &fakeService{state: statemachine.Active}
	h := &PeriodicCounterSelection{Svc: svc}

	payload := encodeSelectionPayload(10_000, nil)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(svc.uids) != 0 {
		t.Errorf("uids = %v, want empty", svc.uids)
	}
}

func TestPeriodicCounterSelectionRequiresActive(t *testing.T) {
	svc := &fakeService{state: statemachine.NotConnected}
	h := &PeriodicCounterSelection{Svc: svc}

	if err := h.Handle(context.Background(), encodeSelectionPayload(1, nil)); err == nil {
		t.Fatal("expected WrongState error")
	}
}

func TestPerJobCounterSelectionAcceptsAndIgnores(t *testing.T) {
	svc := &fakeService{state: statemachine.Active}
	h := &PerJobCounterSelection{Svc: svc}

	if err := h.Handle(context.Background(), []byte{1, 2, 3}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestActivateTimelineReporting(t *testing.T) {
	svc := &fakeService{state: statemachine.Active}
	h := &ActivateTimelineReporting{Svc: svc}

	if err := h.Handle(context.Background(), nil); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !svc.activateCalled {
		t.Error("expected ActivateTimeline to be called")
	}
}

func TestDeactivateTimelineReporting(t *testing.T) {
	svc := &fakeService{state: statemachine.Active}
	h := &DeactivateTimelineReporting{Svc: svc}

	if err := h.Handle(context.Background(), nil); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !svc.deactivateCalled {
		t.Error("expected DeactivateTimeline to be called")
	}
}
