package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where golden traces live, relative to the package under test.
// Golden files sit next to the scenarios they belong to.
const GoldenDir = "testdata/scenarios/golden"

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Collection   string       `json:"collection"`
	Trace        []TraceEvent `json:"trace"`
}

// NewSnapshot builds the snapshot of a scenario run.
func NewSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenario.Name,
		Collection:   scenario.Collection.Name,
		Trace:        result.Trace,
	}
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
// Struct fields keep their declared order and map keys are sorted, so equal
// traces marshal to equal bytes.
func (s TraceSnapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against
// GoldenDir/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, name string) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, name, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, name string, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenario, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
