package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/zephyr/internal/service"
)

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.NotFoundError
		expected string
	}{
		{
			name:     "typical resource",
			err:      &service.NotFoundError{Resource: "listener", ID: "billing-hook"},
			expected: `listener "billing-hook" not found`,
		},
		{
			name:     "different resource type",
			err:      &service.NotFoundError{Resource: "event", ID: "abc-123"},
			expected: `event "abc-123" not found`,
		},
		{
			name:     "empty ID",
			err:      &service.NotFoundError{Resource: "listener", ID: ""},
			expected: `listener "" not found`,
		},
		{
			name:     "ID with special characters",
			err:      &service.NotFoundError{Resource: "listener", ID: "billing.order.paid"},
			expected: `listener "billing.order.paid" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNotFoundError_implements_error(t *testing.T) {
	var err error = &service.NotFoundError{Resource: "listener", ID: "x"}
	assert.Error(t, err)
}

func TestConflictError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ConflictError
		expected string
	}{
		{
			name:     "typical resource",
			err:      &service.ConflictError{Resource: "listener", ID: "billing-hook"},
			expected: `listener with id "billing-hook" already exists`,
		},
		{
			name:     "empty ID",
			err:      &service.ConflictError{Resource: "listener", ID: ""},
			expected: `listener with id "" already exists`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConflictError_implements_error(t *testing.T) {
	var err error = &service.ConflictError{Resource: "listener", ID: "x"}
	assert.Error(t, err)
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ValidationError
		expected string
	}{
		{
			name:     "with field and message",
			err:      &service.ValidationError{Field: "type", Message: "type is required"},
			expected: `validation error for "type": type is required`,
		},
		{
			name:     "without field - returns message only",
			err:      &service.ValidationError{Field: "", Message: "invalid request body"},
			expected: "invalid request body",
		},
		{
			name:     "field with special characters",
			err:      &service.ValidationError{Field: "webhook.timeout", Message: "invalid duration"},
			expected: `validation error for "webhook.timeout": invalid duration`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestValidationError_implements_error(t *testing.T) {
	var err error = &service.ValidationError{Field: "x", Message: "bad"}
	assert.Error(t, err)
}
