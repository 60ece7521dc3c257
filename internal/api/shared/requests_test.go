package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

type selfValidating struct{}

func (selfValidating) Validate() error { return errors.New("custom") }

func TestDecodeJSON(t *testing.T) {
	var s sample
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","extra":1}`))
	require.NoError(t, DecodeJSON(r, &s))
	assert.Equal(t, "a", s.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &s), ErrEmptyBody)

	r = httptest.NewRequest("POST", "/", strings.NewReader("{"))
	assert.Error(t, DecodeJSON(r, &s))
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Name: "a"}))
	assert.Error(t, ValidateRequest(sample{}))
	assert.Error(t, ValidateRequest(sample{Name: "a", Email: "nope"}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "custom")
}
