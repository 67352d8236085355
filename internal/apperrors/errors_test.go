package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"nursery/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapAndKind(t *testing.T) {
	err := apperrors.DataStore("wishlist.Add", fmt.Errorf("insert: %w", apperrors.ErrDuplicate))
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, errors.Is(wrapped, apperrors.ErrDuplicate))
	assert.Equal(t, apperrors.KindDataStore, apperrors.KindOf(wrapped))
	assert.True(t, apperrors.Is(wrapped, apperrors.KindDataStore))
	assert.False(t, apperrors.Is(wrapped, apperrors.KindAuth))
	assert.Contains(t, err.Error(), "wishlist.Add")
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, apperrors.Kind(0), apperrors.KindOf(errors.New("boom")))
	assert.Equal(t, "UnknownError", apperrors.Kind(0).String())
}

func TestFromValidator(t *testing.T) {
	type input struct {
		City string `validate:"required"`
		Zip  string `validate:"required"`
	}
	verr := validator.New().Struct(input{City: "Pune"})

	err := apperrors.FromValidator("checkout.SubmitShipping", verr)
	assert.Equal(t, apperrors.KindValidation, err.Kind)
	assert.Len(t, err.Fields, 1)
	assert.Contains(t, err.Fields["Zip"], "required")
}

func TestError_MessageOnly(t *testing.T) {
	err := apperrors.Authorization("", "Unauthorized access")
	assert.Equal(t, "Unauthorized access", err.Error())
	assert.Equal(t, "AuthorizationError", err.Kind.String())
}
