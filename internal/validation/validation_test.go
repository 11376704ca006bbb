package validation

import (
	"testing"

	"go-org/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   string `validate:"personid"`
	Name string `validate:"notblank"`
	Mail string `validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{ID: "1234567", Name: "Avi"}))
	assert.NoError(t, Struct(sample{ID: "1234567", Name: "Avi", Mail: "avi@example.com"}))

	cases := []struct {
		in    sample
		field string
	}{
		{sample{ID: "123456t", Name: "Avi"}, "iD"},
		{sample{ID: "123456", Name: "Avi"}, "iD"},
		{sample{ID: "", Name: "Avi"}, "iD"},
		{sample{ID: "1234567", Name: "   "}, "name"},
		{sample{ID: "1234567", Name: "Avi", Mail: "nope"}, "mail"},
	}
	for _, c := range cases {
		err := Struct(c.in)
		require.Error(t, err, "expected error for %+v", c.in)
		assert.True(t, errs.IsValidation(err))

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, c.field, e.Field)
	}
}

func TestPersonID(t *testing.T) {
	assert.NoError(t, PersonID("1234567"))
	assert.True(t, errs.IsValidation(PersonID("123456t")))
	assert.True(t, errs.IsValidation(PersonID("123456")))
	assert.True(t, errs.IsValidation(PersonID("12345678")))
	assert.True(t, errs.IsValidation(PersonID("")))
}

func TestNonBlank(t *testing.T) {
	assert.NoError(t, NonBlank("name", "Avi"))
	assert.True(t, errs.IsValidation(NonBlank("name", "")))
	assert.True(t, errs.IsValidation(NonBlank("name", "   ")))
}

func TestNonNegative(t *testing.T) {
	assert.NoError(t, NonNegative("clearance", 0))
	assert.NoError(t, NonNegative("clearance", 5))
	assert.True(t, errs.IsValidation(NonNegative("clearance", -1)))
}
