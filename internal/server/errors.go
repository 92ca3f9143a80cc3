package server

import (
	"errors"
	"net/http"
	"strings"

	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, pricingdomain.ErrStudentNotOwned):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, enrollmentdomain.ErrDuplicateEnrollment):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPricingValidationError(err),
		isEnrollmentValidationError(err),
		isPricingConfigValidationError(err):
		return true
	default:
		return false
	}
}

func isPricingValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidTutor),
		errors.Is(err, pricingdomain.ErrStudentsRequired),
		errors.Is(err, pricingdomain.ErrProductsRequired):
		return true
	default:
		return false
	}
}

func isEnrollmentValidationError(err error) bool {
	switch {
	case errors.Is(err, enrollmentdomain.ErrInvalidTutor),
		errors.Is(err, enrollmentdomain.ErrInvalidYear),
		errors.Is(err, enrollmentdomain.ErrInvalidMonth),
		errors.Is(err, enrollmentdomain.ErrInvalidPeriod),
		errors.Is(err, enrollmentdomain.ErrInvalidStatus),
		errors.Is(err, enrollmentdomain.ErrInvalidPageToken):
		return true
	default:
		return false
	}
}

func isPricingConfigValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingconfigdomain.ErrAdminRequired),
		errors.Is(err, pricingconfigdomain.ErrNothingToUpdate),
		errors.Is(err, pricingconfigdomain.ErrInvalidAmount),
		errors.Is(err, pricingconfigdomain.ErrInvalidPercent),
		errors.Is(err, pricingconfigdomain.ErrInvalidDueDay),
		errors.Is(err, pricingconfigdomain.ErrInvalidReminderDays):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, pricingdomain.ErrStudentNotFound),
		errors.Is(err, pricingdomain.ErrProductNotFound),
		errors.Is(err, pricingconfigdomain.ErrNotFound),
		errors.Is(err, enrollmentdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// validationErrorCode resolves a validation sentinel to its stable code even
// when the error carries wrapped context.
func validationErrorCode(err error) string {
	for _, sentinel := range []error{
		ErrInvalidRequest,
		pricingdomain.ErrInvalidTutor,
		pricingdomain.ErrStudentsRequired,
		pricingdomain.ErrProductsRequired,
		enrollmentdomain.ErrInvalidTutor,
		enrollmentdomain.ErrInvalidYear,
		enrollmentdomain.ErrInvalidMonth,
		enrollmentdomain.ErrInvalidPeriod,
		enrollmentdomain.ErrInvalidStatus,
		enrollmentdomain.ErrInvalidPageToken,
		pricingconfigdomain.ErrAdminRequired,
		pricingconfigdomain.ErrNothingToUpdate,
		pricingconfigdomain.ErrInvalidAmount,
		pricingconfigdomain.ErrInvalidPercent,
		pricingconfigdomain.ErrInvalidDueDay,
		pricingconfigdomain.ErrInvalidReminderDays,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}
