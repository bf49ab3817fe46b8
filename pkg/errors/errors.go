// Copyright (c) 2025, The amctl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeConfig indicates a missing settings file, a missing or placeholder
	// field, or an invalid registry backend selector.
	ErrCodeConfig ErrorCode = "CONFIG"
	// ErrCodePrerequisite indicates a required external tool is not available.
	ErrCodePrerequisite ErrorCode = "PREREQUISITE"
	// ErrCodeRegistry indicates a registry describe or create failure.
	ErrCodeRegistry ErrorCode = "REGISTRY"
	// ErrCodeBuild indicates a missing build or pipeline descriptor, or a remote build failure.
	ErrCodeBuild ErrorCode = "BUILD"
	// ErrCodeDeploy indicates a missing chart descriptor or a release apply failure.
	ErrCodeDeploy ErrorCode = "DEPLOY"
	// ErrCodeIdentity indicates a GSA or KSA operation failure, or an absent KSA.
	ErrCodeIdentity ErrorCode = "IDENTITY"
	// ErrCodeDiscovery indicates the target discovery could not produce a target file.
	ErrCodeDiscovery ErrorCode = "DISCOVERY"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, an operator-facing remediation hint, and optional
// context for debugging.
type StructuredError struct {
	Code        ErrorCode
	Message     string
	Remediation string
	Cause       error
	Context     map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// WithRemediation sets the remediation hint and returns the same error.
func (e *StructuredError) WithRemediation(format string, args ...any) *StructuredError {
	e.Remediation = fmt.Sprintf(format, args...)
	return e
}

// WithContext merges the key/value into the error context and returns the same error.
func (e *StructuredError) WithContext(key string, value any) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the outermost StructuredError in the chain,
// or ErrCodeInternal when err carries none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any StructuredError in the chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StructuredError
		if !errors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}

// RemediationOf returns the first non-empty remediation hint in the chain.
func RemediationOf(err error) string {
	for err != nil {
		var se *StructuredError
		if !errors.As(err, &se) {
			return ""
		}
		if se.Remediation != "" {
			return se.Remediation
		}
		err = se.Cause
	}
	return ""
}
