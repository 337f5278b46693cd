package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload         = "invalid_payload"
	ErrCodeValidation             = "validation_error"
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInternal               = "internal_server_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeConflict               = "conflict"
	ErrCodeRowVersionConflict     = "row_version_conflict"
	ErrCodeExceedsDeposit         = "deductions_exceed_deposit"
	ErrCodeInvalidTransition      = "invalid_status_transition"
	ErrCodeChecklistIncomplete    = "turnover_checklist_incomplete"
	ErrCodeExternalServiceFailure = "external_service_failure"
)

// ErrorResponse carries an optional Details payload next to the code/message pair.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode writes an ErrorResponse and logs it. Client errors
// log at warn, everything else at error. Only the first devErr is logged.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	RespondWithJSON(w, status, ErrorResponse{
		Code:    errorCode,
		Message: publicMessage,
		Details: details,
	})

	entry := Logger.WithFields(logrus.Fields{
		"status": status,
		"code":   errorCode,
	})
	if len(devErrs) > 0 && devErrs[0] != nil {
		entry = entry.WithError(devErrs[0])
	}
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		entry.Warn(publicMessage)
		return
	}
	entry.Error(publicMessage)
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
