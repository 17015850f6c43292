package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidator(t *testing.T) {
	type query struct {
		Keyword string `validate:"required"`
	}
	rv := NewRequestValidator()

	assert.NoError(t, rv.Validate(&query{Keyword: "nolan"}))
	assert.Error(t, rv.Validate(&query{}))
}
