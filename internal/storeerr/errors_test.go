package storeerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, KindOOM.Severity())
	assert.Equal(t, SeverityFatal, KindNullArgument.Severity())
	assert.Equal(t, SeverityMajor, KindInvalidInput.Severity())
	assert.Equal(t, SeverityMajor, KindConnectFail.Severity())
	assert.Equal(t, SeverityMajor, KindQueryFail.Severity())
	assert.Equal(t, SeverityMajor, KindSyncError.Severity())
}

func TestNewQueryFail_WrapsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := NewQueryFail("SELECT * FROM bundleTable WHERE bundle = ?", cause)

	require.True(t, errors.Is(err, cause))
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindQueryFail, kind)
}

func TestKindOf_NonTaxonomyError(t *testing.T) {
	_, ok := KindOf(errors.New("plain error"))
	assert.False(t, ok)
}

func TestErrorIs_ComparesByKind(t *testing.T) {
	a := NewQueryFail("q1", errors.New("x"))
	b := NewQueryFail("q2", errors.New("y"))
	assert.True(t, errors.Is(a, b))

	c := NewInvalidInput("field", 48, 47)
	assert.False(t, errors.Is(a, c))
}
