package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/service"
	"github.com/hanxue/hanxue-api/internal/service/auth"
	"github.com/hanxue/hanxue-api/internal/service/review"
	"github.com/hanxue/hanxue-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types or messages to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrVocabularyNotFound),
		errors.Is(err, store.ErrProgressNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, review.ErrReviewConflict):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		isUserInputError(err),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// userInputErrors are the bare domain sentinels returned for account data a
// client supplied. Their messages carry no internal detail.
var userInputErrors = []error{
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrDisplayNameTooLong,
	domain.ErrInvalidTargetHSK,
}

func userInputError(err error) (error, bool) {
	for _, target := range userInputErrors {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}

func isUserInputError(err error) bool {
	_, ok := userInputError(err)
	return ok
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verrs    validator.ValidationErrors
		fieldErr *domain.ValidationError
	)
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrWrongPassword):
		return "Current password is incorrect"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrVocabularyNotFound):
		return "Vocabulary not found"

	case errors.Is(err, store.ErrProgressNotFound):
		return "Progress not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, review.ErrReviewConflict):
		return "This item is being reviewed concurrently, please retry"

	case errors.As(err, &verrs):
		return SanitizeValidationError(err)

	case errors.Is(err, review.ErrInvalidReview):
		return "Quality must be between 0 and 5 and responseMs cannot be negative"

	case errors.Is(err, review.ErrInvalidQuery):
		return "HSK level must be between 1 and 9"

	case isUserInputError(err):
		sentinel, _ := userInputError(err)
		return capitalize(sentinel.Error())

	case errors.As(err, &fieldErr):
		return capitalize(fieldErr.Error())

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending JSON field and rule.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	msg := getValidationTagMessage(fe.Tag(), fe.Param())
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), msg)
}

func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. Server errors
// are logged with the redacted cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
