// Package services provides the business logic layer between the HTTP
// handlers and the forecasting engine. Services validate and translate
// wire requests, orchestrate fit/predict/evaluate flows, and map domain
// errors onto stable error codes.
package services

import (
	"errors"
	"net/http"

	"github.com/panelcast/panelcast/internal/artifacts"
	"github.com/panelcast/panelcast/internal/engine"
	"github.com/panelcast/panelcast/internal/panel"
	"github.com/panelcast/panelcast/internal/transform"
)

// Stable service error codes, mapped onto HTTP statuses by HTTPStatus.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeInternal         = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// HTTPStatus maps the error code onto an HTTP status.
func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// wrapDomainError classifies an error from the panel/transform/engine
// layers into a ServiceError. Already-classified errors pass through.
func wrapDomainError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var schemaErr *panel.SchemaError
	if errors.As(err, &schemaErr) {
		return NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(), map[string]interface{}{
			"entity": schemaErr.Entity,
			"column": schemaErr.Column,
		})
	}

	var cfgErr *engine.ConfigError
	if errors.As(err, &cfgErr) {
		details := map[string]interface{}{}
		if len(cfgErr.Columns) > 0 {
			details["columns"] = cfgErr.Columns
		}
		return NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(), details)
	}

	var dataErr *engine.InsufficientDataError
	if errors.As(err, &dataErr) {
		return NewServiceErrorWithDetails(CodeInsufficientData, err.Error(), map[string]interface{}{
			"entity":  dataErr.Entity,
			"horizon": dataErr.Horizon,
		})
	}

	var domainErr *transform.DomainError
	if errors.As(err, &domainErr) {
		return NewServiceError(CodeInvalidRequest, err.Error())
	}

	var histErr *transform.InsufficientHistoryError
	if errors.As(err, &histErr) {
		return NewServiceErrorWithDetails(CodeInsufficientData, err.Error(), map[string]interface{}{
			"entity": histErr.Entity,
		})
	}

	if errors.Is(err, artifacts.ErrNotFound) {
		return NewServiceError(CodeNotFound, err.Error())
	}

	return NewServiceError(CodeInternal, err.Error())
}
