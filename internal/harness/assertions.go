package harness

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Group    string // Encoded group, if the assertion addresses one
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Group != "" {
		fmt.Fprintf(&buf, " %s", e.Group)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the collection's final
// state and returns one message per failure.
func EvaluateAssertions(ctx context.Context, svc *items.Service, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertPositions:
			err = assertPositions(ctx, svc, assertion)
		case AssertGroupSize:
			err = assertGroupSize(ctx, svc, assertion)
		case AssertContiguous:
			err = svc.Check(ctx)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errs
}

// assertPositions checks that the group holds exactly the expected records
// at the expected positions.
func assertPositions(ctx context.Context, svc *items.Service, a Assertion) error {
	list, err := svc.List(ctx, a.Group)
	if err != nil {
		return err
	}
	actual := make(map[string]int, len(list))
	for _, item := range list {
		actual[item.ID] = item.Position
	}
	if maps.Equal(actual, a.Expect) {
		return nil
	}
	return &AssertionError{
		Type:     AssertPositions,
		Group:    ordering.GroupKey(a.Group).Encode(),
		Expected: formatPositions(a.Expect),
		Actual:   formatPositions(actual),
	}
}

func assertGroupSize(ctx context.Context, svc *items.Service, a Assertion) error {
	list, err := svc.List(ctx, a.Group)
	if err != nil {
		return err
	}
	if len(list) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertGroupSize,
		Group:    ordering.GroupKey(a.Group).Encode(),
		Expected: fmt.Sprintf("%d records", *a.Count),
		Actual:   fmt.Sprintf("%d records", len(list)),
	}
}

// formatPositions renders id => position pairs sorted by position, then id.
func formatPositions(m map[string]int) string {
	ids := slices.Collect(maps.Keys(m))
	slices.SortFunc(ids, func(a, b string) int {
		if m[a] != m[b] {
			return m[a] - m[b]
		}
		return strings.Compare(a, b)
	})
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s:%d", id, m[id])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
