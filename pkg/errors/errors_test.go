package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsUnwrapsThroughChain(t *testing.T) {
	base := New(CodeStateConflict, "offer already customer approved")
	wrapped := fmt.Errorf("reviewing offer: %w", base)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeStateConflict, typed.Code())
	assert.Equal(t, "offer already customer approved", typed.Message())
}

func TestIsCode(t *testing.T) {
	err := New(CodeNotFound, "insurance category not found")
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(nil, CodeNotFound))
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	assert.Equal(t, MetadataFor(CodeInternal), meta)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("driver failure")
	err := Wrap(CodeDependency, cause, "persist payment")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DEPENDENCY_ERROR: persist payment", err.Error())
}
