package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrListNotFound is returned when a list id does not exist.
	ErrListNotFound = errors.New("list not found")
	// ErrManhwaNotFound is returned when a manhwa id does not exist.
	ErrManhwaNotFound = errors.New("manhwa not found")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrListNameTaken is returned when the user already has a list with that name.
	ErrListNameTaken = errors.New("list name already exists")
	// ErrDefaultList is returned when renaming or deleting a default list.
	ErrDefaultList = errors.New("default lists cannot be renamed or deleted")
	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrInvalidName is returned when a list or display name is blank.
	ErrInvalidName = errors.New("name must not be blank")
	// ErrInvalidScore is returned for scores outside [1,10].
	ErrInvalidScore = errors.New("score must be between 1 and 10")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when a protected route has no valid principal.
	ErrUnauthorized = errors.New("authentication required")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrListNotFound, http.StatusNotFound, "LIST_NOT_FOUND"},
	{ErrManhwaNotFound, http.StatusNotFound, "MANHWA_NOT_FOUND"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrListNameTaken, http.StatusConflict, "LIST_NAME_TAKEN"},
	{ErrDefaultList, http.StatusBadRequest, "DEFAULT_LIST"},
	{ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
	{ErrInvalidName, http.StatusBadRequest, "INVALID_NAME"},
	{ErrInvalidScore, http.StatusBadRequest, "INVALID_SCORE"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
