package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRating(t *testing.T) {
	for stars := MinRating; stars <= MaxRating; stars++ {
		assert.NoError(t, ValidateRating(stars))
	}
	assert.ErrorIs(t, ValidateRating(MinRating-1), ErrInvalidRating)
	assert.ErrorIs(t, ValidateRating(MaxRating+1), ErrInvalidRating)
	assert.ErrorIs(t, ValidateRating(-3), ErrInvalidRating)
}
