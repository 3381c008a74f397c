package httpdto

import (
	"errors"
	"net/http"

	handyhub_errors "handyhub/pkg/errors"
)

// Response is the envelope of every JSON body the API returns.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func NewErrorResponse(msg string, code string) Response[any] {
	return Response[any]{Error: msg, Code: code}
}

// ErrorFrom builds the status and envelope for err. Messages of internal
// failures are replaced so store details never reach the client.
func ErrorFrom(err error) (int, Response[any]) {
	status := handyhub_errors.HTTPStatus(err)
	msg := err.Error()
	if Internal(err) {
		msg = "internal error"
	}
	return status, NewErrorResponse(msg, handyhub_errors.Code(err))
}

// Internal reports whether err is answered with a 500.
func Internal(err error) bool {
	return handyhub_errors.HTTPStatus(err) == http.StatusInternalServerError ||
		errors.Is(err, handyhub_errors.ErrInternal)
}
