package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/validation"
)

type tripRequest struct {
	Title    string   `json:"title" validate:"required,min=2,max=200"`
	Distance *float64 `json:"distance,omitempty" validate:"omitempty,gte=0"`
	Notes    string   `json:"notes" validate:"max=10"`
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	d := 12.5
	assert.NoError(t, validation.New().Validate(tripRequest{Title: "Rysy", Distance: &d}))
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	d := -1.0
	err := validation.New().Validate(tripRequest{Title: "R", Distance: &d, Notes: "far too many words"})
	require.Error(t, err)

	var fields validation.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "must be at least 2 characters", fields["title"])
	assert.Equal(t, "must be greater than or equal to 0", fields["distance"])
	assert.Equal(t, "must not exceed 10 characters", fields["notes"])
	assert.Equal(t,
		"distance must be greater than or equal to 0; notes must not exceed 10 characters; title must be at least 2 characters",
		err.Error())
}

func TestValidatorCountsRunes(t *testing.T) {
	assert.NoError(t, validation.New().Validate(tripRequest{Title: "Łą"}))
}
