package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("name", "must not be empty")))
	assert.True(t, IsConflict(Conflict("person", "1234567")))
	assert.True(t, IsNotFound(NotFound("group", "abc")))
	assert.True(t, IsCycle(Cycle("group", "abc", "self adoption")))
	assert.True(t, IsInvariant(Invariant("person", "1234567", "not a direct member")))

	assert.False(t, IsNotFound(Conflict("person", "1234567")))
	assert.False(t, IsValidation(nil))
	assert.False(t, IsValidation(fmt.Errorf("plain error")))
}

func TestPredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("assigning: %w", NotFound("group", "abc"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, `not_found: group "abc": does not exist`, NotFound("group", "abc").Error())
	assert.Equal(t, `validation: field "name": must not be empty`, Validation("name", "must not be empty").Error())
	assert.Equal(t, "cycle: a group cannot adopt itself", Cycle("group", "", "a group cannot adopt itself").Error())
}
