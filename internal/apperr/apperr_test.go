package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("no stock"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal("db", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestKindOfWrapped(t *testing.T) {
	sentinel := Conflict("insufficient balance")
	wrapped := fmt.Errorf("purchase: %w", sentinel)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, "insufficient balance", Message(wrapped))
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal("failed to load product", errors.New("connection reset"))

	assert.Equal(t, "failed to load product: connection reset", err.Error())
	assert.Equal(t, "failed to load product", Message(err))
	assert.Equal(t, "Internal server error", Message(errors.New("x")))
}
