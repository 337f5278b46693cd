package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer. Services wrap them with
// fmt.Errorf("%w: ...") so controllers can match with errors.Is.
var (
	ErrValidation              = errors.New("validation_error")
	ErrExceedsDeposit          = errors.New("deductions_exceed_deposit")
	ErrNotFound                = errors.New("not_found")
	ErrUpload                  = errors.New("upload_failed")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")
	ErrInvalidRefundTransition = errors.New("invalid_refund_transition")
	ErrChecklistIncomplete     = errors.New("turnover_checklist_incomplete")
	ErrLeaseNotActive          = errors.New("lease_not_active")
	ErrActiveLeaseExists       = errors.New("active_lease_exists")
	ErrForbidden               = errors.New("forbidden")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (Stripe, SendGrid, Twilio, Cloudinary)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries an HTTP-facing failure from controllers to HandleAppError.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}

// ToAppError maps a service-layer error onto the HTTP status and code the
// controllers respond with.
func ToAppError(err error, fallbackMsg string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrValidation):
		return &AppError{StatusCode: http.StatusBadRequest, Code: ErrCodeValidation, Message: err.Error(), Err: err}
	case errors.Is(err, ErrExceedsDeposit):
		return &AppError{StatusCode: http.StatusUnprocessableEntity, Code: ErrCodeExceedsDeposit, Message: "Deductions exceed the original deposit", Err: err}
	case errors.Is(err, ErrNotFound):
		return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, ErrForbidden):
		return &AppError{StatusCode: http.StatusForbidden, Code: ErrCodeForbidden, Message: "Not permitted for this lease", Err: err}
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrInvalidRefundTransition):
		return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeInvalidTransition, Message: err.Error(), Err: err}
	case errors.Is(err, ErrChecklistIncomplete):
		return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeChecklistIncomplete, Message: "Turnover checklist is not complete", Err: err}
	case errors.Is(err, ErrLeaseNotActive), errors.Is(err, ErrActiveLeaseExists):
		return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeConflict, Message: err.Error(), Err: err}
	case errors.Is(err, ErrRowVersionConflict):
		return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeRowVersionConflict, Message: "Another update occurred, please refresh", Err: err}
	case errors.Is(err, ErrUpload), errors.Is(err, ErrExternalServiceFailure):
		return &AppError{StatusCode: http.StatusBadGateway, Code: ErrCodeExternalServiceFailure, Message: fallbackMsg, Err: err}
	default:
		return &AppError{StatusCode: http.StatusInternalServerError, Code: ErrCodeInternal, Message: fallbackMsg, Err: err}
	}
}
