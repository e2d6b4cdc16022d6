package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output except watch's line stream uses this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound    = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid     = "CONFIG_INVALID"
	ErrCodeSSHTimeout        = "SSH_TIMEOUT"
	ErrCodeSSHAuthFailed     = "SSH_AUTH_FAILED"
	ErrCodeSSHHostKey        = "SSH_HOST_KEY"
	ErrCodeSSHConnectionFail = "SSH_CONNECTION_FAILED"
	ErrCodeCommandFailed     = "COMMAND_FAILED"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeUnknown           = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

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

	var rsErr *errors.Error
	if !stderrors.As(err, &rsErr) {
		return &JSONError{
			Code:    ErrCodeUnknown,
			Message: err.Error(),
		}
	}

	jsonErr := &JSONError{
		Code:       mapErrorCode(rsErr),
		Message:    rsErr.Message,
		Suggestion: rsErr.Suggestion,
	}
	if rsErr.Cause != nil {
		jsonErr.Details = map[string]interface{}{
			"cause": rsErr.Cause.Error(),
		}
	}
	return jsonErr
}

// mapErrorCode maps internal error codes to machine-readable codes. SSH
// failures are split further by what the cause chain says went wrong.
func mapErrorCode(e *errors.Error) string {
	switch e.Code {
	case errors.ErrConfig:
		msg := strings.ToLower(e.Message)
		if strings.Contains(msg, "not found") || strings.Contains(msg, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrSSH:
		return sshErrorCode(e)
	case errors.ErrExec:
		return ErrCodeCommandFailed
	case errors.ErrState:
		return ErrCodeInvalidState
	}
	return ErrCodeUnknown
}

func sshErrorCode(e *errors.Error) string {
	var mismatch *sshutil.HostKeyMismatchError
	if stderrors.As(e, &mismatch) {
		return ErrCodeSSHHostKey
	}
	if stderrors.Is(e, context.DeadlineExceeded) {
		return ErrCodeSSHTimeout
	}

	text := strings.ToLower(e.Error())
	switch {
	case strings.Contains(text, "unable to authenticate"),
		strings.Contains(text, "no supported methods"),
		strings.Contains(text, "encrypted"):
		return ErrCodeSSHAuthFailed
	case strings.Contains(text, "host key"):
		return ErrCodeSSHHostKey
	case strings.Contains(text, "timed out"), strings.Contains(text, "timeout"):
		return ErrCodeSSHTimeout
	}
	return ErrCodeSSHConnectionFail
}
