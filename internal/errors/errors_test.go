package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, CodeInvalidRequest, "bad date")

	assert.Equal(t, "bad date", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Empty(t, err.Fields)
}

func TestNewValidationErrors(t *testing.T) {
	fields := []FieldError{
		{Field: "from", Message: "is required"},
		{Field: "to", Message: "must not be before from"},
	}

	err := NewValidationErrors(fields)

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Equal(t, fields, err.Fields)
}

func TestInvalidParam(t *testing.T) {
	err := InvalidParam("date", "must be YYYY-MM-DD")

	assert.Equal(t, []FieldError{{Field: "date", Message: "must be YYYY-MM-DD"}}, err.Fields)
}
