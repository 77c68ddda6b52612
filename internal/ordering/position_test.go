package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input string
		want  Position
	}{
		{"", Blank},
		{"   ", Blank},
		{"0", At(0)},
		{"3", At(3)},
		{" 4 ", At(4)},
		{"-1", At(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePosition(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePosition_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "1.5", "3x", "first"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePosition(input)
			require.Error(t, err)
			assert.True(t, HasCode(err, ErrCodeInvalidPosition))
			assert.True(t, IsRequestError(err))
		})
	}
}

func TestPosition_Kinds(t *testing.T) {
	assert.True(t, Unset.IsUnset())
	assert.False(t, Unset.IsBlank())
	assert.True(t, Blank.IsBlank())
	assert.False(t, Blank.IsUnset())
	assert.Equal(t, Unset, Position{})

	n, ok := At(0).Int()
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	_, ok = Blank.Int()
	assert.False(t, ok)
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "unset", Unset.String())
	assert.Equal(t, `""`, Blank.String())
	assert.Equal(t, "-2", At(-2).String())
}
