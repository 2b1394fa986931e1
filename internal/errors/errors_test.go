package errors

import (
	stdErrors "errors"
	"testing"
)

func TestNewFallsBackToRegisteredMessage(t *testing.T) {
	err := New(CodeNotFound, "")
	if err.Message() != "resource not found" {
		t.Fatalf("expected registered default message, got %q", err.Message())
	}
	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeStorageFailure, cause, "写入失败")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("wrapped cause must be reachable via errors.Is")
	}
	if err.Message() != "写入失败" {
		t.Fatalf("message must not include the cause: %q", err.Message())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeNotFound, "first")
	b := New(CodeNotFound, "second")
	c := New(CodeConflict, "other")

	if !stdErrors.Is(a, b) {
		t.Fatalf("errors with the same code must match")
	}
	if stdErrors.Is(a, c) {
		t.Fatalf("errors with different codes must not match")
	}
}

func TestCodeOfUnknownError(t *testing.T) {
	if got := CodeOf(stdErrors.New("plain")); got != CodeUnknown {
		t.Fatalf("plain errors must map to UNKNOWN, got %s", got)
	}
	if got := CodeOf(Wrap(CodeTimeout, stdErrors.New("deadline"), "")); got != CodeTimeout {
		t.Fatalf("wrapped errors must keep their code, got %s", got)
	}
}

func TestRegisterOverridesAttributes(t *testing.T) {
	code := Code("TEST_ONLY")
	Register(code, Attributes{Message: "test only", Severity: SeverityWarning, Retryable: true, Alert: false})

	attr := AttributesOf(code)
	if attr.Message != "test only" || attr.Severity != SeverityWarning || !attr.Retryable {
		t.Fatalf("unexpected attributes: %+v", attr)
	}
	if ShouldAlert(New(code, "")) {
		t.Fatalf("alert flag must follow the registration")
	}
}

func TestAttributesOfUnregisteredCode(t *testing.T) {
	attr := AttributesOf(Code("NEVER_REGISTERED"))
	if attr.Severity != SeverityCritical || !attr.Alert {
		t.Fatalf("unregistered codes must fall back to UNKNOWN attributes: %+v", attr)
	}
}
