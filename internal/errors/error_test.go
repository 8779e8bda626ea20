package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStockError(t *testing.T) {
	// given
	err := fmt.Errorf("place order: %w", &InsufficientStockError{
		ProductID:   uuid.New(),
		ProductName: "Keyboard",
		Available:   1,
		Requested:   3,
	})

	// then
	assert.ErrorIs(t, err, ErrInsufficientStock)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Keyboard", stockErr.ProductName)
	assert.Contains(t, err.Error(), "available 1, requested 3")
}
