package apperrors

import (
	"errors"
	"net/http"
)

// ErrInvalidArgument indicates the caller supplied malformed or missing data.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound indicates the targeted asset does not exist.
var ErrNotFound = errors.New("asset not found")

// ErrStorageUnavailable indicates the document store could not be reached.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrStorageWrite indicates the document store did not acknowledge a write.
var ErrStorageWrite = errors.New("storage write failed")

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus is the inverse of HTTPStatus for clients reading API responses.
func FromStatus(code int) error {
	switch {
	case code == http.StatusBadRequest:
		return ErrInvalidArgument
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return ErrStorageUnavailable
	default:
		return nil
	}
}
