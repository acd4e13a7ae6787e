package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeDatabaseError      ErrorCode = "COMMON_007"
	ErrCodeCacheError         ErrorCode = "COMMON_008"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_009"
	ErrCodeTimeout            ErrorCode = "COMMON_010"
	ErrCodeNotImplemented     ErrorCode = "COMMON_011"
)

// Deadline engine error codes.
const (
	// ErrCodePeriodFormat marks a reporting-period string that does not match
	// any recognised shape (YYYY, YYYY-MM, YYYY-QN). Caller mistake; never
	// retried internally.
	ErrCodePeriodFormat ErrorCode = "DDL_001"

	// ErrCodeRuleConfiguration marks a missing deadline rule for a
	// (report type, jurisdiction, frequency) combination even after the
	// EU-wide fallback, or an unsupported jurisdiction code.
	ErrCodeRuleConfiguration ErrorCode = "DDL_002"

	// ErrCodeCalendarDegraded marks a holiday-calendar build failure. It is
	// logged and absorbed: business-day checks fall back to weekday-only
	// logic so deadline computation always completes.
	ErrCodeCalendarDegraded ErrorCode = "DDL_003"

	// ErrCodeDependencyUnresolved marks a persistence failure while resolving
	// prerequisite deadline completion states.
	ErrCodeDependencyUnresolved ErrorCode = "DDL_004"

	// ErrCodeRuleNotFound marks a lookup for a specific rule id that matched
	// no active rule.
	ErrCodeRuleNotFound ErrorCode = "DDL_005"

	// ErrCodeDeadlineNotFound marks a calculated-deadline lookup miss.
	ErrCodeDeadlineNotFound ErrorCode = "DDL_006"

	// ErrCodeStatusTransition marks an attempt to move a calculated deadline
	// backwards or out of a terminal status.
	ErrCodeStatusTransition ErrorCode = "DDL_007"
)

// Shorthand aliases used at call sites throughout the engine.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the ops surface.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodePeriodFormat:         http.StatusBadRequest,
	ErrCodeRuleConfiguration:    http.StatusUnprocessableEntity,
	ErrCodeCalendarDegraded:     http.StatusInternalServerError,
	ErrCodeDependencyUnresolved: http.StatusInternalServerError,
	ErrCodeRuleNotFound:         http.StatusNotFound,
	ErrCodeDeadlineNotFound:     http.StatusNotFound,
	ErrCodeStatusTransition:     http.StatusConflict,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodePeriodFormat:         "invalid reporting period format",
	ErrCodeRuleConfiguration:    "no deadline rule configured",
	ErrCodeCalendarDegraded:     "holiday calendar unavailable",
	ErrCodeDependencyUnresolved: "failed to resolve deadline dependencies",
	ErrCodeRuleNotFound:         "deadline rule not found",
	ErrCodeDeadlineNotFound:     "calculated deadline not found",
	ErrCodeStatusTransition:     "invalid deadline status transition",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode ("DDL", "COMMON").
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
