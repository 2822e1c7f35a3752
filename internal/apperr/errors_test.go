package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := NotFound("invoice")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	wrapped := fmt.Errorf("load invoice: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestTimeout_UnwrapsCause(t *testing.T) {
	err := Timeout("customers.list", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestValidation_CarriesField(t *testing.T) {
	err := Validation("amount", "must be greater than zero")
	fields := FieldsOf(fmt.Errorf("record payment: %w", err))
	if assert.Len(t, fields, 1) {
		assert.Equal(t, "amount", fields[0].Field)
		assert.Equal(t, "invalid_amount", fields[0].Code)
	}
	assert.Contains(t, err.Error(), "must be greater than zero")
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Nil(t, FieldsOf(errors.New("boom")))
}
