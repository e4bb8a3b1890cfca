package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditDelta(t *testing.T) {
	assert.Equal(t, 5, CreditDelta(5))
	assert.Equal(t, 5, CreditDelta(4))
	assert.Equal(t, 0, CreditDelta(3))
	assert.Equal(t, -10, CreditDelta(2))
	assert.Equal(t, -10, CreditDelta(1))
}

func TestPositiveNegative(t *testing.T) {
	assert.True(t, Positive(4))
	assert.True(t, Positive(5))
	assert.False(t, Positive(3))

	assert.True(t, Negative(1))
	assert.True(t, Negative(2))
	assert.False(t, Negative(3))
}

func TestVisible(t *testing.T) {
	assert.True(t, (&Evaluation{Status: string(StatusNormal)}).Visible())
	assert.True(t, (&Evaluation{Status: string(StatusHidden)}).Visible())
	assert.False(t, (&Evaluation{Status: string(StatusDeleted)}).Visible())
}

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"a", "b"}.Value()
	assert.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, v.(string))
}

func TestStringListScan(t *testing.T) {
	var l StringList
	assert.NoError(t, l.Scan(`["x","y"]`))
	assert.Equal(t, StringList{"x", "y"}, l)

	assert.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
}
