package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("Order Not Found"), http.StatusNotFound},
		{Unauthorized("No Token"), http.StatusUnauthorized},
		{Forbidden("Invalid Admin Token"), http.StatusForbidden},
		{Conflict("You already submitted a review"), http.StatusConflict},
		{Validation("Cart is empty"), http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("Product Not Found")
	wrapped := fmt.Errorf("load product: %w", base)

	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "Product Not Found", MessageOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(KindConflict, "You already submitted a review", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "You already submitted a review", MessageOf(err))
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal", KindInternal.String())
}
