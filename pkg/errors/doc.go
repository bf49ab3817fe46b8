// Package errors provides structured error types for amctl pipelines.
//
// Every failure in a pipeline step is reported as a StructuredError whose
// Code identifies the failing component and whose Remediation tells the
// operator what to fix: which settings key, which file to create, or which
// pipeline to run first.
//
// Example usage:
//
//	return errors.New(errors.ErrCodeConfig, "project_id is required").
//	    WithRemediation("set project_id in %s", path)
//
// Callers map errors to exit behavior with CodeOf and RemediationOf.
package errors
