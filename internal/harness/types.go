package harness

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq       int    `json:"seq"`
	Op        string `json:"op"`
	ID        string `json:"id,omitempty"`
	Group     string `json:"group,omitempty"`
	Requested string `json:"requested,omitempty"`
	Position  *int   `json:"position,omitempty"`
	Error     string `json:"error,omitempty"`

	// Options is the presentation list of a list step, as "key=label".
	Options []string `json:"options,omitempty"`

	// State maps each touched group to its records as "id:position",
	// in position order.
	State map[string][]string `json:"state,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a flow event.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
