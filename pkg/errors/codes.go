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

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_017"
	ErrCodeUnsupportedMedia   ErrorCode = "COMMON_018"
)

const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Clause Module Error Codes
const (
	ErrCodeClauseEmpty        ErrorCode = "CLS_001"
	ErrCodeModelModeInvalid   ErrorCode = "CLS_002"
	ErrCodeSensitivityUnknown ErrorCode = "CLS_003"
)

// Document Module Error Codes
const (
	ErrCodeDocumentEmpty     ErrorCode = "DOC_001"
	ErrCodeDocumentNotLoaded ErrorCode = "DOC_002"
	ErrCodeDocumentTooLarge  ErrorCode = "DOC_003"
)

// Viewer Module Error Codes
const (
	ErrCodeViewerParseFailed  ErrorCode = "VWR_001"
	ErrCodeViewerRenderFailed ErrorCode = "VWR_002"
	ErrCodeViewerNotReady     ErrorCode = "VWR_003"
	ErrCodeViewerPageNotFound ErrorCode = "VWR_004"
)

// Export Module Error Codes
const (
	ErrCodeExportNoData ErrorCode = "EXP_001"
	ErrCodeExportFormat ErrorCode = "EXP_002"
	ErrCodeReportFailed ErrorCode = "EXP_003"
)

// Backend Error Codes
const (
	ErrCodeBackendUnavailable ErrorCode = "BKD_001"
	ErrCodeBackendRejected    ErrorCode = "BKD_002"
	ErrCodeBackendMalformed   ErrorCode = "BKD_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeUnsupportedMedia:   http.StatusUnsupportedMediaType,

	ErrCodeClauseEmpty:        http.StatusBadRequest,
	ErrCodeModelModeInvalid:   http.StatusBadRequest,
	ErrCodeSensitivityUnknown: http.StatusBadRequest,

	ErrCodeDocumentEmpty:     http.StatusBadRequest,
	ErrCodeDocumentNotLoaded: http.StatusNotFound,
	ErrCodeDocumentTooLarge:  http.StatusRequestEntityTooLarge,

	ErrCodeViewerParseFailed:  http.StatusUnprocessableEntity,
	ErrCodeViewerRenderFailed: http.StatusUnprocessableEntity,
	ErrCodeViewerNotReady:     http.StatusConflict,
	ErrCodeViewerPageNotFound: http.StatusNotFound,

	ErrCodeExportNoData: http.StatusBadRequest,
	ErrCodeExportFormat: http.StatusBadRequest,
	ErrCodeReportFailed: http.StatusBadGateway,

	ErrCodeBackendUnavailable: http.StatusBadGateway,
	ErrCodeBackendRejected:    http.StatusBadGateway,
	ErrCodeBackendMalformed:   http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "storage error",
	ErrCodeUnsupportedMedia:   "unsupported media type",

	ErrCodeClauseEmpty:        "clause text is empty",
	ErrCodeModelModeInvalid:   "unknown model mode",
	ErrCodeSensitivityUnknown: "unknown sensitivity profile",

	ErrCodeDocumentEmpty:     "document is empty",
	ErrCodeDocumentNotLoaded: "no document analysis available",
	ErrCodeDocumentTooLarge:  "document exceeds upload limit",

	ErrCodeViewerParseFailed:  "failed to parse PDF",
	ErrCodeViewerRenderFailed: "failed to render PDF page",
	ErrCodeViewerNotReady:     "viewer has no rendered document",
	ErrCodeViewerPageNotFound: "page not rendered",

	ErrCodeExportNoData: "No data to export",
	ErrCodeExportFormat: "unsupported export format",
	ErrCodeReportFailed: "report generation failed",

	ErrCodeBackendUnavailable: "analysis backend unavailable",
	ErrCodeBackendRejected:    "analysis backend rejected the request",
	ErrCodeBackendMalformed:   "analysis backend returned a malformed response",
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

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
