package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create: %w", newValidationError("priority", "invalid priority"))

	assert.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "priority", ve.Field)
	assert.Equal(t, "priority: invalid priority", ve.Error())
	assert.Equal(t, "boom", (&ValidationError{Message: "boom"}).Error())
}

func TestStorageAndIntegrationErrorsUnwrap(t *testing.T) {
	se := &StorageError{Op: "list", Err: context.Canceled}
	assert.ErrorIs(t, se, context.Canceled)
	assert.NotErrorIs(t, se, ErrValidation)

	ie := &IntegrationError{Integration: "sms", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, ie, context.DeadlineExceeded)
	assert.Equal(t, "sms integration: context deadline exceeded", ie.Error())
}
