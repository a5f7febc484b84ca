// Package errors provides the fatal/infra error class (startup, config,
// resource failures) — distinct from the per-record wpl.WparseError /
// oml.RunError taxonomy, which is never fatal.
package errors

import (
	"fmt"
	"runtime"
	"time"
)

// AppError is a standardized infrastructure-failure error.
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	Cause      error                  `json:"cause,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Severity   Severity               `json:"severity"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeConfigNotFound   = "CONFIG_NOT_FOUND"
	CodeConfigValidation = "CONFIG_VALIDATION_FAILED"

	CodeResourceExhausted = "RESOURCE_EXHAUSTED"
	CodeResourceNotFound  = "RESOURCE_NOT_FOUND"

	CodeProcessingFailed = "PROCESSING_FAILED"

	CodeNetworkUnavailable = "NETWORK_UNAVAILABLE"

	CodeSystemFailure = "SYSTEM_FAILURE"
)

func New(code, component, operation, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Code:       code,
		Message:    message,
		Component:  component,
		Operation:  operation,
		StackTrace: fmt.Sprintf("%s:%d", file, line),
		Metadata:   make(map[string]interface{}),
		Timestamp:  time.Now(),
		Severity:   SeverityMedium,
	}
}

func NewCritical(code, component, operation, message string) *AppError {
	err := New(code, component, operation, message)
	err.Severity = SeverityCritical
	return err
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Component, e.Operation, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Code, e.Message)
}

func (e *AppError) Wrap(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func (e *AppError) IsCritical() bool { return e.Severity == SeverityCritical }

func ConfigError(operation, message string) *AppError {
	return New(CodeConfigInvalid, "config", operation, message)
}

func SystemError(operation, message string) *AppError {
	return NewCritical(CodeSystemFailure, "system", operation, message)
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}
