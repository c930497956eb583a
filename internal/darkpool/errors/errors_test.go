package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapAndCode(t *testing.T) {
	base := stderrors.New("connection refused")
	wrapped := Wrap(base, Unreachable, "coordinator dial failed")

	if Code(wrapped) != Unreachable {
		t.Fatalf("Code = %v, want Unreachable", Code(wrapped))
	}
	if !Is(wrapped, Unreachable) {
		t.Fatal("Is should report true for the wrapped code")
	}
	if !stderrors.Is(wrapped, base) {
		t.Fatal("standard errors.Is should see through Unwrap to base")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(nil, Fatal, "x") != nil {
		t.Fatal("Wrap(nil, ...) must return nil")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(Timeout, "deadline exceeded")) {
		t.Fatal("Timeout should be retryable")
	}
	if IsRetryable(New(ValidationError, "bad input")) {
		t.Fatal("ValidationError should not be retryable")
	}
}

func TestHTTPStatus(t *testing.T) {
	if HTTPStatus(CommitmentMismatch) != 403 {
		t.Fatalf("CommitmentMismatch should map to 403, got %d", HTTPStatus(CommitmentMismatch))
	}
	if HTTPStatus(Fatal) != 500 {
		t.Fatalf("Fatal should map to 500, got %d", HTTPStatus(Fatal))
	}
}
