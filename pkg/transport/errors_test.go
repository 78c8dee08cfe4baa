package transport

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
)

func TestMakeError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apierrors.NewValidationErrorf("title", "must not be empty"), http.StatusBadRequest},
		{apierrors.NewNotFoundError("repo", 7), http.StatusNotFound},
		{apierrors.NewInvalidStateError("analyzing", "start analysis"), http.StatusConflict},
		{apierrors.NewStorageError(errors.New("pq: broken pipe")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		got := MakeError(c.err)
		assert.Equal(t, c.code, got.HTTPCode, "error %v", c.err)
	}
}

func TestMakeErrorHidesStorageDetails(t *testing.T) {
	got := MakeError(apierrors.NewStorageError(errors.New("pq: password authentication failed")))
	assert.NotContains(t, got.Message, "pq:")
	assert.Equal(t, "temporary storage failure, retry later", got.Message)
}

func TestMakeErrorSeesThroughWrapping(t *testing.T) {
	err := errors.Wrap(apierrors.NewNotFoundError("issue", 3), "resolving issue")
	assert.Equal(t, http.StatusNotFound, MakeError(err).HTTPCode)
}
