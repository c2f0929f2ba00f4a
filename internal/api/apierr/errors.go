package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/cutgame/internal/api/response"
	"github.com/mcoot/cutgame/internal/model"
)

// APIError is the body of every API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeNotInRoom      = "NOT_IN_ROOM"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError pairs an HTTP status with the body to send
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

// domainErrors maps core errors onto responses, first match wins
var domainErrors = []struct {
	err error
	he  httpError
}{
	{model.ErrRoomNotFound, httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room does not exist"}}},
	{model.ErrNotInRoom, httpError{http.StatusNotFound, APIError{CodeNotInRoom, "Not in this room"}}},
}

var internalError = httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}

// WriteError writes the response for err. Unrecognised errors become a 500
// without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	response.JSON(w, he.status, ErrorResponse{Error: he.apiError})
}

func toHTTPError(err error) httpError {
	var he *httpError
	if errors.As(err, &he) {
		return *he
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.he
		}
	}
	return internalError
}

// NewInvalidRequestError creates a 400 with the given message
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates a generic 500
func NewInternalError() error {
	he := internalError
	return &he
}
