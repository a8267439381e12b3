package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeRerollUsed, "reroll already used")
	if !stderrors.Is(err, &Error{Code: CodeRerollUsed}) {
		t.Fatal("expected errors.Is to match on code")
	}
	if stderrors.Is(err, &Error{Code: CodeRerollFailed}) {
		t.Fatal("expected errors.Is to reject a different code")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "save session", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "save session" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "save session")
	}
}

type typedFailure struct{}

func (typedFailure) Error() string   { return "typed" }
func (typedFailure) ErrorCode() Code { return CodeGenerationFailed }

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: CodeUnknown},
		{name: "plain", err: stderrors.New("boom"), want: CodeUnknown},
		{name: "domain", err: New(CodeRerollUsed, "used"), want: CodeRerollUsed},
		{name: "wrapped domain", err: fmt.Errorf("reroll: %w", New(CodeRerollFailed, "none")), want: CodeRerollFailed},
		{name: "typed", err: fmt.Errorf("generate: %w", typedFailure{}), want: CodeGenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadataOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", WithMetadata(CodeRerollTargetNotFound, "missing", map[string]string{"Trait": "trait_strong"}))
	md := MetadataOf(err)
	if md["Trait"] != "trait_strong" {
		t.Fatalf("metadata = %v", md)
	}
	if MetadataOf(stderrors.New("x")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestCodeKind(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{CodeScriptParse, KindInvalidArgument},
		{CodeRerollUsed, KindFailedPrecondition},
		{CodeCatalogChanged, KindFailedPrecondition},
		{CodeRerollTargetNotFound, KindNotFound},
		{CodeGenerationFailed, KindUnavailable},
		{CodeRerollFailed, KindUnavailable},
		{CodeUnknown, KindInternal},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %v, want %v", tt.code, got, tt.want)
		}
	}
	if KindUnavailable.ExitCode() == KindFailedPrecondition.ExitCode() {
		t.Fatal("expected distinct exit codes for retryable and precondition failures")
	}
}
