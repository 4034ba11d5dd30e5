package protocol

import (
	"errors"
	"testing"
)

func TestErrorMessageEncodeDecode(t *testing.T) {
	tests := []*ErrorMessage{
		NewError(ErrExecution, "killer €a escaped"),
		NewError(ErrNotFound, ""),
		NewFatalError(ErrInvalidFrame, "𝄞 bad frame"),
	}

	for _, em := range tests {
		data, err := EncodeErrorMessage(em)
		if err != nil {
			t.Fatalf("EncodeErrorMessage: %v", err)
		}
		got, err := DecodeErrorMessage(data)
		if err != nil {
			t.Fatalf("DecodeErrorMessage: %v", err)
		}
		if *got != *em {
			t.Errorf("got %+v, want %+v", got, em)
		}
	}
}

func TestErrorMessageRejectsInvalidUTF8(t *testing.T) {
	if _, err := EncodeErrorMessage(NewError(ErrExecution, "\xff")); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrUnknown, "Unknown"},
		{ErrInvalidFrame, "InvalidFrame"},
		{ErrRateLimited, "RateLimited"},
		{ErrSerialize, "Serialize"},
		{ErrTransport, "Transport"},
		{ErrDeserialize, "Deserialize"},
		{ErrExecution, "Execution"},
		{ErrTimeout, "Timeout"},
		{ErrNotFound, "NotFound"},
		{ErrorCode(0xFFFF), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%#x).String() = %q, want %q", uint16(tt.code), got, tt.want)
		}
	}
}

func TestErrorMessageError(t *testing.T) {
	if got := NewError(ErrExecution, "boom").Error(); got != "Execution: boom" {
		t.Errorf("Error() = %q", got)
	}
	em := NewFatalError(ErrInvalidFrame, "bad")
	if got := em.Error(); got != "fatal: InvalidFrame: bad" {
		t.Errorf("Error() = %q", got)
	}
	if !em.IsFatal() {
		t.Error("IsFatal should be true")
	}
}
