package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfig, "project_id is required")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeConfig {
		t.Errorf("expected code %s, got %s", ErrCodeConfig, err.Code)
	}
	if err.Message != "project_id is required" {
		t.Errorf("expected message 'project_id is required', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrCodeRegistry, "failed to create repository", cause)

	if err.Code != ErrCodeRegistry {
		t.Errorf("expected code %s, got %s", ErrCodeRegistry, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("NOT_FOUND")
	ctx := map[string]any{
		"namespace": "apigee-monitor",
		"ksa":       "apigee-monitor-apigee-monitor",
	}

	err := WrapWithContext(ErrCodeIdentity, "ksa lookup failed", cause, ctx)

	if err.Code != ErrCodeIdentity {
		t.Errorf("expected code %s, got %s", ErrCodeIdentity, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["namespace"] != "apigee-monitor" {
		t.Errorf("expected namespace to be apigee-monitor")
	}
}

func TestWithRemediationAndContext(t *testing.T) {
	err := New(ErrCodeBuild, "missing Dockerfile").
		WithRemediation("create %s", "target-generator/Dockerfile").
		WithContext("dir", "target-generator")

	if err.Remediation != "create target-generator/Dockerfile" {
		t.Errorf("unexpected remediation %q", err.Remediation)
	}
	if err.Context["dir"] != "target-generator" {
		t.Errorf("expected dir context, got %v", err.Context)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeDeploy, "chart not found"),
			expected: "[DEPLOY] chart not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "structured", err: New(ErrCodeBuild, "x"), want: ErrCodeBuild},
		{name: "fmt wrapped", err: fmt.Errorf("step: %w", New(ErrCodeIdentity, "x")), want: ErrCodeIdentity},
		{name: "outermost wins", err: Wrap(ErrCodeDeploy, "x", New(ErrCodeConfig, "y")), want: ErrCodeDeploy},
		{name: "plain", err: errors.New("plain"), want: ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(ErrCodeDeploy, "apply failed", New(ErrCodeConfig, "bad key"))
	if !HasCode(err, ErrCodeConfig) {
		t.Error("expected nested CONFIG code to be found")
	}
	if !HasCode(err, ErrCodeDeploy) {
		t.Error("expected outer DEPLOY code to be found")
	}
	if HasCode(err, ErrCodeBuild) {
		t.Error("did not expect BUILD code")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestRemediationOf(t *testing.T) {
	inner := New(ErrCodeIdentity, "ksa missing").WithRemediation("run amctl deploy first")
	outer := Wrap(ErrCodeIdentity, "verify ksa", inner)

	if got := RemediationOf(outer); got != "run amctl deploy first" {
		t.Errorf("RemediationOf() = %q", got)
	}
	if got := RemediationOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty remediation, got %q", got)
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeConfig,
		ErrCodePrerequisite,
		ErrCodeRegistry,
		ErrCodeBuild,
		ErrCodeDeploy,
		ErrCodeIdentity,
		ErrCodeDiscovery,
		ErrCodeInternal,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
