package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
	"github.com/roach88/ordering/internal/present"
	"github.com/roach88/ordering/internal/store"
	"github.com/roach88/ordering/internal/testutil"
)

// Harness executes the steps of one scenario against one backend.
type Harness struct {
	scenario  *Scenario
	svc       *items.Service
	presenter *present.Presenter
}

// Run executes a scenario on a fresh in-memory SQLite store.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	return RunWith(context.Background(), scenario, st)
}

// RunWith executes a scenario against backend, which must be empty.
//
// Execution flow:
// 1. Build the collection service with sequential IDs
// 2. Execute setup steps; any failure aborts the run
// 3. Execute flow steps, tracing each and checking its expect clause
// 4. Evaluate assertions against the final state
func RunWith(ctx context.Context, scenario *Scenario, backend items.Backend) (*Result, error) {
	svc, err := items.NewService(scenario.Collection.Definition(), backend,
		items.WithIDGenerator(testutil.NewSequentialIDs(scenario.Collection.Name)),
		items.WithLogger(testutil.DiscardLogger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection: %w", err)
	}

	h := &Harness{
		scenario:  scenario,
		svc:       svc,
		presenter: present.NewPresenter(present.NewLocalizer(present.DefaultLanguage)),
	}

	for i, step := range scenario.Setup {
		if _, err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("setup[%d] (%s): %w", i, step.Op, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		event, err := h.execute(ctx, step)
		event.Seq = i + 1
		if err != nil {
			event.Error = errorCode(err)
		}
		result.AddTrace(event)

		for _, msg := range checkExpect(step, event, err) {
			result.AddError(fmt.Sprintf("flow[%d] (%s): %s", i, step.Op, msg))
		}
	}

	for _, msg := range EvaluateAssertions(ctx, h.svc, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step. The returned event is filled as far as the step got.
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	event := TraceEvent{Op: step.Op, ID: step.ID}
	if len(step.Group) > 0 {
		event.Group = ordering.GroupKey(step.Group).Encode()
	}

	switch step.Op {
	case OpCreate:
		event.Requested = step.Position.String()
		item, err := h.svc.Create(ctx, items.NewItem{
			ID:       step.ID,
			Group:    step.Group,
			Position: step.Position.Position,
			Fields:   step.Fields,
		})
		if err != nil {
			return event, err
		}
		event.ID = item.ID
		return h.placed(ctx, event, item.Position, item.Group)

	case OpMove, OpTransfer, OpUpdate:
		change := items.Change{Group: step.Group, Fields: step.Fields}
		if step.Op != OpUpdate || !step.Position.IsUnset() {
			event.Requested = step.Position.String()
			change.Position = &step.Position.Position
		}
		prior, err := h.svc.Get(ctx, step.ID)
		if err != nil {
			return event, err
		}
		item, err := h.svc.Update(ctx, step.ID, change)
		if err != nil {
			return event, err
		}
		return h.placed(ctx, event, item.Position, prior.Group, item.Group)

	case OpDelete:
		item, err := h.svc.Delete(ctx, step.ID)
		if err != nil {
			return event, err
		}
		return h.placed(ctx, event, item.Position, item.Group)

	case OpRenumber:
		if _, err := h.svc.Renumber(ctx, step.Group); err != nil {
			return event, err
		}
		return h.placed(ctx, event, -1, step.Group)

	case OpList:
		spec := h.scenario.Collection.ListSpec()
		tag := h.presenter.Localizer().Match(step.Language)
		options, err := h.presenter.List(ctx, h.svc.Coordinator(), step.Group, *spec, tag)
		if err != nil {
			return event, err
		}
		event.Options = make([]string, 0, len(options))
		for _, o := range options {
			event.Options = append(event.Options, o.Key+"="+o.Label)
		}
		return event, nil
	}

	return event, fmt.Errorf("unknown op %q", step.Op)
}

// placed records the position (when >= 0) and the state of the given groups.
func (h *Harness) placed(ctx context.Context, event TraceEvent, position int, groups ...ordering.GroupKey) (TraceEvent, error) {
	if position >= 0 {
		event.Position = &position
	}
	event.State = make(map[string][]string, len(groups))
	for _, g := range groups {
		scope := h.svc.Definition().Scope(g)
		key := scope.Group.Encode()
		if _, done := event.State[key]; done {
			continue
		}
		list, err := h.svc.List(ctx, scope.Group)
		if err != nil {
			return event, err
		}
		state := make([]string, 0, len(list))
		for _, item := range list {
			state = append(state, item.ID+":"+strconv.Itoa(item.Position))
		}
		event.State[key] = state
	}
	return event, nil
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(step Step, event TraceEvent, err error) []string {
	var msgs []string
	expect := step.Expect
	if expect == nil {
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("unexpected error: %v", err))
		}
		return msgs
	}

	if expect.Error != "" {
		if err == nil {
			return append(msgs, fmt.Sprintf("expected error %s, got success", expect.Error))
		}
		if event.Error != expect.Error {
			msgs = append(msgs, fmt.Sprintf("expected error %s, got %s (%v)", expect.Error, event.Error, err))
		}
		return msgs
	}
	if err != nil {
		return append(msgs, fmt.Sprintf("unexpected error: %v", err))
	}

	if expect.Position != nil {
		switch {
		case event.Position == nil:
			msgs = append(msgs, fmt.Sprintf("expected position %d, got none", *expect.Position))
		case *event.Position != *expect.Position:
			msgs = append(msgs, fmt.Sprintf("expected position %d, got %d", *expect.Position, *event.Position))
		}
	}
	if expect.Options != nil && !slices.Equal(expect.Options, event.Options) {
		msgs = append(msgs, fmt.Sprintf("expected options %q, got %q", expect.Options, event.Options))
	}
	return msgs
}

// errorCode returns the ordering error code of err, or INTERNAL.
func errorCode(err error) string {
	var e *ordering.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "INTERNAL"
}
