package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Marshal(t *testing.T) {
	pos := 0
	snapshot := TraceSnapshot{
		ScenarioName: "s",
		Collection:   "tasks",
		Trace: []TraceEvent{{
			Seq:       1,
			Op:        OpCreate,
			ID:        "t1",
			Group:     `{"project":"p1"}`,
			Requested: "unset",
			Position:  &pos,
			State:     map[string][]string{`{"project":"p1"}`: {"t1:0"}},
		}},
	}

	data, err := snapshot.Marshal()
	require.NoError(t, err)

	want := `{
  "scenario_name": "s",
  "collection": "tasks",
  "trace": [
    {
      "seq": 1,
      "op": "create",
      "id": "t1",
      "group": "{\"project\":\"p1\"}",
      "requested": "unset",
      "position": 0,
      "state": {
        "{\"project\":\"p1\"}": [
          "t1:0"
        ]
      }
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestSnapshot_OmitsEmptyFields(t *testing.T) {
	data, err := TraceSnapshot{
		ScenarioName: "s",
		Collection:   "tasks",
		Trace:        []TraceEvent{{Seq: 1, Op: OpDelete, ID: "x", Error: "NOT_FOUND"}},
	}.Marshal()
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"position"`)
	assert.NotContains(t, string(data), `"state"`)
	assert.Contains(t, string(data), `"error": "NOT_FOUND"`)
}

func TestNewSnapshot(t *testing.T) {
	scenario := &Scenario{Name: "n", Collection: CollectionDef{Name: "menu"}}
	result := NewResult()
	result.AddTrace(TraceEvent{Seq: 1, Op: OpRenumber})

	snapshot := NewSnapshot(scenario, result)
	assert.Equal(t, "n", snapshot.ScenarioName)
	assert.Equal(t, "menu", snapshot.Collection)
	assert.Len(t, snapshot.Trace, 1)
}
