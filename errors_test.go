package profiling

import (
	"errors"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("RegisterCounter", ErrCodeInvalidArgument, "multiplier must be positive")

	if err.Op != "RegisterCounter" {
		t.Errorf("Op = %q, want RegisterCounter", err.Op)
	}
	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidArgument)
	}
	want := "profiling: RegisterCounter: multiplier must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapErrorPreservesCode(t *testing.T) {
	inner := NewError("Dispatch", ErrCodeUnknownPacket, "no handler")
	wrapped := WrapError("ReceiveLoop", ErrCodeIOError, inner)

	if wrapped.Code != ErrCodeUnknownPacket {
		t.Errorf("Code = %q, want preserved %q", wrapped.Code, ErrCodeUnknownPacket)
	}
}

func TestWrapErrorUsesGivenCodeForPlainError(t *testing.T) {
	wrapped := WrapError("Send", ErrCodeIOError, errors.New("connection reset"))
	if wrapped.Code != ErrCodeIOError {
		t.Errorf("Code = %q, want %q", wrapped.Code, ErrCodeIOError)
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError("op", ErrCodeIOError, nil) != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := &Error{Code: ErrCodeWrongState, Msg: "first"}
	b := &Error{Code: ErrCodeWrongState, Msg: "second"}
	if !errors.Is(a, b) {
		t.Error("errors with the same Code should match via errors.Is")
	}

	c := &Error{Code: ErrCodeIOError}
	if errors.Is(a, c) {
		t.Error("errors with different Codes should not match")
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("Activate", ErrCodeTimeout, "activation timed out")

	if !IsCode(err, ErrCodeTimeout) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, ErrCodeIOError) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, ErrCodeTimeout) {
		t.Error("IsCode should return false for nil error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := WrapError("Send", ErrCodeIOError, inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should see through Unwrap to the inner error")
	}
}
