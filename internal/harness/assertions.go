package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/auditlocal/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Calls    []trace.Call // Full journal for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Calls) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, c := range e.Calls {
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", c.Seq, c.Service, c.Operation, c.Args)
		}
	}

	return buf.String()
}

// assertTraceContains checks if the journal contains a call to the operation
// whose args contain the expected args (subset match).
func assertTraceContains(calls []trace.Call, assertion Assertion) error {
	for _, c := range calls {
		if c.Operation == assertion.Operation && matchArgs(c.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("operation %s with args %v", assertion.Operation, assertion.Args),
		Actual:   "not found in trace",
		Calls:    calls,
	}
}

// assertTraceOrder checks that the operations occur in the given order,
// each matched against a call after the previous match. Intervening calls
// are allowed and an operation may be listed more than once.
func assertTraceOrder(calls []trace.Call, assertion Assertion) error {
	first := make(map[string]int)
	for i, c := range calls {
		if _, seen := first[c.Operation]; !seen {
			first[c.Operation] = i + 1 // 1-indexed for readability
		}
	}

	for _, op := range assertion.Operations {
		if first[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all operations present: %v", assertion.Operations),
				Actual:   fmt.Sprintf("missing operation: %s", op),
				Calls:    calls,
			}
		}
	}

	pos := 0
	for i, op := range assertion.Operations {
		next := 0
		for j := pos; j < len(calls); j++ {
			if calls[j].Operation == op {
				next = j + 1
				break
			}
		}
		if next == 0 {
			prev := assertion.Operations[i-1]
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("operations in order: %v", assertion.Operations),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, pos, op, first[op]),
				Calls: calls,
			}
		}
		pos = next
	}

	return nil
}

// assertTraceCount checks the operation was called exactly Count times.
func assertTraceCount(calls []trace.Call, assertion Assertion) error {
	count := 0
	for _, c := range calls {
		if c.Operation == assertion.Operation {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Operation),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Calls:    calls,
		}
	}

	return nil
}

// assertQueueCount checks how many payloads of a type were sent.
func assertQueueCount(counts map[string]int, assertion Assertion) error {
	if got := counts[assertion.PayloadType]; got != assertion.Count {
		return &AssertionError{
			Type:     AssertQueueCount,
			Expected: fmt.Sprintf("%d messages of type %s", assertion.Count, assertion.PayloadType),
			Actual:   fmt.Sprintf("%d messages (all counts: %v)", got, counts),
		}
	}
	return nil
}

// matchArgs checks if the journalled args contain all expected args
// (subset match). Extra keys in actual are ignored.
func matchArgs(raw json.RawMessage, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}

	var actual map[string]any
	if err := json.Unmarshal(raw, &actual); err != nil {
		return false
	}

	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares a decoded JSON value with a YAML value by passing
// the YAML value through JSON, so 2 and 2.0 compare equal.
func valuesEqual(actual, expected any) bool {
	raw, err := json.Marshal(expected)
	if err != nil {
		return false
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return false
	}
	return reflect.DeepEqual(actual, normalized)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Calls, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Calls, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Calls, assertion)
		case AssertQueueCount:
			err = assertQueueCount(result.QueueCounts, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
