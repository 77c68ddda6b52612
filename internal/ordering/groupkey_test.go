package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupKey_Encode(t *testing.T) {
	tests := []struct {
		name string
		key  GroupKey
		want string
	}{
		{"nil", nil, "{}"},
		{"empty", GroupKey{}, "{}"},
		{"sorted", GroupKey{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
		{"nfc", GroupKey{"k": "e\u0301"}, "{\"k\":\"\u00e9\"}"},
		{"no html escaping", GroupKey{"k": "<a&b>"}, `{"k":"<a&b>"}`},
		{"quotes escaped", GroupKey{"k": `say "hi"`}, `{"k":"say \"hi\""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Encode())
		})
	}
}

func TestGroupKey_Equal(t *testing.T) {
	assert.True(t, GroupKey{"k": "\u00e9"}.Equal(GroupKey{"k": "e\u0301"}))
	assert.True(t, GroupKey(nil).Equal(GroupKey{}))
	assert.False(t, GroupKey{"k": "1"}.Equal(GroupKey{"k": "2"}))
}

func TestGroupKey_Project(t *testing.T) {
	key := GroupKey{"project": "p1", "owner": "ann", "extra": "x"}

	got := key.Project([]string{"project", "missing"})

	assert.Equal(t, GroupKey{"project": "p1", "missing": ""}, got)
	assert.Equal(t, GroupKey{}, key.Project(nil))
}

func TestGroupKey_Missing(t *testing.T) {
	key := GroupKey{"project": "p1", "blank": ""}

	assert.Nil(t, key.Missing([]string{"project", "blank"}))
	assert.Equal(t, []string{"owner"}, key.Missing([]string{"project", "owner"}))
}

func TestChanged(t *testing.T) {
	fields := []string{"project", "owner"}

	assert.Nil(t, Changed(GroupKey{"project": "p1"}, GroupKey{"project": "p1"}, fields))
	assert.Nil(t, Changed(GroupKey{"owner": "\u00e9"}, GroupKey{"owner": "e\u0301"}, fields))
	assert.Equal(t, []string{"project"},
		Changed(GroupKey{"project": "p1", "owner": "a"}, GroupKey{"project": "p2", "owner": "a"}, fields))
	assert.Nil(t, Changed(GroupKey{"other": "1"}, GroupKey{"other": "2"}, fields))
}

func TestParseGroupKey(t *testing.T) {
	key := GroupKey{"project": "p1", "owner": "<ann>"}

	parsed, err := ParseGroupKey(key.Encode())
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	empty, err := ParseGroupKey("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseGroupKey("{not json")
	assert.Error(t, err)
}
