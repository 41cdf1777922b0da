package errs

import (
	"errors"
	"testing"
)

func TestKindRetriable(t *testing.T) {
	if !ToolRecoverable.Retriable() {
		t.Error("ToolRecoverable should be retriable")
	}
	if !ModelTransient.Retriable() {
		t.Error("ModelTransient should be retriable")
	}
	if ModelFatal.Retriable() {
		t.Error("ModelFatal should not be retriable")
	}
}

func TestDeny_CarriesRuleID(t *testing.T) {
	err := Deny("rule-42", errors.New("tenant forbids task kind"))
	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Kind != PolicyDeny || e.RuleID != "rule-42" {
		t.Errorf("got kind=%s rule=%s", e.Kind, e.RuleID)
	}
}

func TestAsAndIs(t *testing.T) {
	err := ToolErr(ToolFatal, "format_citation", errors.New("boom"))
	kind, ok := As(err)
	if !ok || kind != ToolFatal {
		t.Fatalf("As()=%v,%v want ToolFatal,true", kind, ok)
	}
	if !Is(err, ToolFatal) {
		t.Error("Is(err, ToolFatal) should be true")
	}
	if Is(err, ModelFatal) {
		t.Error("Is(err, ModelFatal) should be false")
	}
}

func TestWrappedError_Unwraps(t *testing.T) {
	cause := errors.New("underlying")
	err := New(ModelTransient, cause)
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose cause")
	}
}
