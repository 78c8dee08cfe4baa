package transport

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
)

type Error struct {
	HTTPCode int
	Message  string
}

func (e Error) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(e.Message)), nil
}

func (e Error) Error() string {
	return e.Message
}

func makeError(code int, e error) *Error {
	return &Error{
		HTTPCode: code,
		Message:  e.Error(),
	}
}

func MakeError(e error) *Error {
	switch {
	case apierrors.IsValidationError(e):
		return makeError(http.StatusBadRequest, e)
	case apierrors.IsNotFoundError(e):
		return makeError(http.StatusNotFound, e)
	case apierrors.IsInvalidStateError(e):
		return makeError(http.StatusConflict, e)
	case apierrors.IsStorageError(e):
		// don't leak store details
		return makeError(http.StatusInternalServerError, errors.New("temporary storage failure, retry later"))
	}

	return makeError(http.StatusInternalServerError, errors.New("internal error"))
}
