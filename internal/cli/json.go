package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/pvdash/internal/errors"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound      = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid       = "CONFIG_INVALID"
	ErrCodeUpstreamUnreachable = "UPSTREAM_UNREACHABLE"
	ErrCodeRenderFailed        = "RENDER_FAILED"
	ErrCodeExportFailed        = "EXPORT_FAILED"
	ErrCodeUnknown             = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var pvErr *errors.Error
	if stderrors.As(err, &pvErr) {
		jsonErr := &JSONError{
			Code:       mapErrorCode(pvErr.Code, pvErr.Message),
			Message:    pvErr.Message,
			Suggestion: pvErr.Suggestion,
		}
		if pvErr.Cause != nil {
			jsonErr.Cause = errors.Summary(pvErr.Cause)
		}
		return jsonErr
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		if strings.Contains(strings.ToLower(message), "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrFetch:
		return ErrCodeUpstreamUnreachable
	case errors.ErrRender:
		return ErrCodeRenderFailed
	case errors.ErrExport:
		return ErrCodeExportFailed
	}
	return ErrCodeUnknown
}
