package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/auditlocal/internal/trace"
)

// TraceSnapshot is the golden form of a run. The run id is left out so a
// snapshot does not depend on the id generator.
type TraceSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Calls        []trace.Call   `json:"calls"`
	QueueCounts  map[string]int `json:"queue_counts"`
}

// Snapshot renders result as indented JSON with a trailing newline.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Calls:        result.Calls,
		QueueCounts:  result.QueueCounts,
	}
	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// AssertGolden compares the result's journal against a golden file.
// The golden file is stored in testdata/golden/{scenarioName}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	out, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, out)

	return nil
}
