package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Search errors (2000-2999)
	ErrInvalidFilter     = 2000
	ErrSearchBackend     = 2001
	ErrSearchTimeout     = 2002
	ErrUnknownEntityType = 2003
	ErrPerPageTooLarge   = 2004

	// Preset errors (3000-3999)
	ErrPresetNotFound     = 3000
	ErrPresetInvalidInput = 3001
	ErrPresetNameTaken    = 3002

	// Export errors (4000-4999)
	ErrExportNotFound      = 4000
	ErrExportInvalidFormat = 4001
	ErrExportFailed        = 4002
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Search errors
	ErrInvalidFilter:     {ErrInvalidFilter, http.StatusBadRequest, "Malformed search filter"},
	ErrSearchBackend:     {ErrSearchBackend, http.StatusBadGateway, "Search backend unavailable"},
	ErrSearchTimeout:     {ErrSearchTimeout, http.StatusGatewayTimeout, "Search timed out"},
	ErrUnknownEntityType: {ErrUnknownEntityType, http.StatusBadRequest, "Unknown entity type"},
	ErrPerPageTooLarge:   {ErrPerPageTooLarge, http.StatusBadRequest, "Page size exceeds limit"},

	// Preset errors
	ErrPresetNotFound:     {ErrPresetNotFound, http.StatusNotFound, "Preset not found"},
	ErrPresetInvalidInput: {ErrPresetInvalidInput, http.StatusBadRequest, "Invalid preset input"},
	ErrPresetNameTaken:    {ErrPresetNameTaken, http.StatusConflict, "Preset name already in use"},

	// Export errors
	ErrExportNotFound:      {ErrExportNotFound, http.StatusNotFound, "Export job not found"},
	ErrExportInvalidFormat: {ErrExportInvalidFormat, http.StatusBadRequest, "Unsupported export format"},
	ErrExportFailed:        {ErrExportFailed, http.StatusInternalServerError, "Export failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
