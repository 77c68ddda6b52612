package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ordering/internal/ordering"
	"github.com/roach88/ordering/internal/present"
)

// Scenario is one ordering conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Collection is the definition the scenario runs against.
	Collection CollectionDef `yaml:"collection"`

	// Setup steps run before the flow and are not traced.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the traced steps.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// CollectionDef is the inline collection definition of a scenario.
type CollectionDef struct {
	Name     string   `yaml:"name"`
	Position string   `yaml:"position"`
	Group    []string `yaml:"group,omitempty"`
	List     *ListDef `yaml:"list,omitempty"`
}

// ListDef names the presentation list fields.
type ListDef struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Definition converts the inline definition.
func (c CollectionDef) Definition() ordering.Definition {
	return ordering.Definition{
		Collection:    c.Name,
		PositionField: c.Position,
		GroupFields:   c.Group,
	}
}

// ListSpec returns the presentation list fields, or nil.
func (c CollectionDef) ListSpec() *present.ListSpec {
	if c.List == nil {
		return nil
	}
	return &present.ListSpec{KeyField: c.List.Key, ValueField: c.List.Value}
}

// Step is one operation.
type Step struct {
	// Op is the operation: create, move, transfer, update, delete, list, renumber.
	Op string `yaml:"op"`

	// ID addresses the record. Optional for create.
	ID string `yaml:"id,omitempty"`

	// Group is the record's group (create), its new group (transfer,
	// update) or the group to read (list, renumber).
	Group map[string]string `yaml:"group,omitempty"`

	// Position is the requested position.
	Position StepPosition `yaml:"position,omitempty"`

	// Fields are the record's attributes.
	Fields map[string]string `yaml:"fields,omitempty"`

	// Language is the Accept-Language of a list step.
	Language string `yaml:"language,omitempty"`

	// Expect validates the step's outcome. Nil means the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// StepPosition is a requested position in YAML: an integer, "" for blank,
// null or absent for unset.
type StepPosition struct {
	ordering.Position
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *StepPosition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: position must be a scalar", node.Line)
	}
	pos, err := ordering.ParsePosition(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	p.Position = pos
	return nil
}

// Expect specifies a step's expected outcome.
type Expect struct {
	// Position is the expected assigned position.
	Position *int `yaml:"position,omitempty"`

	// Error is the expected ordering error code, e.g. NOT_FOUND.
	Error string `yaml:"error,omitempty"`

	// Options is the expected presentation list as "key=label".
	Options []string `yaml:"options,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is positions, group_size or contiguous.
	Type string `yaml:"type"`

	// Group selects the group (positions, group_size).
	Group map[string]string `yaml:"group,omitempty"`

	// Expect maps record ID to position (positions).
	Expect map[string]int `yaml:"expect,omitempty"`

	// Count is the expected group size (group_size).
	Count *int `yaml:"count,omitempty"`
}

// Operation names.
const (
	OpCreate   = "create"
	OpMove     = "move"
	OpTransfer = "transfer"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRenumber = "renumber"
)

// Assertion type constants.
const (
	AssertPositions  = "positions"
	AssertGroupSize  = "group_size"
	AssertContiguous = "contiguous"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := s.Collection.Definition().Validate(); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	if spec := s.Collection.ListSpec(); spec != nil {
		if err := spec.Validate(s.Collection.Name); err != nil {
			return fmt.Errorf("collection.list: %w", err)
		}
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(s, step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is only allowed in flow", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(s, step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(s *Scenario, step Step) error {
	switch step.Op {
	case OpCreate, OpRenumber:
	case OpMove, OpUpdate, OpDelete:
		if step.ID == "" {
			return fmt.Errorf("id is required for %s", step.Op)
		}
	case OpTransfer:
		if step.ID == "" {
			return fmt.Errorf("id is required for %s", step.Op)
		}
		if len(step.Group) == 0 {
			return fmt.Errorf("group is required for %s", step.Op)
		}
	case OpList:
		if s.Collection.List == nil {
			return fmt.Errorf("list requires collection.list")
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertPositions:
		if a.Expect == nil {
			return fmt.Errorf("expect is required for positions")
		}
	case AssertGroupSize:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("count must be non-negative for group_size")
		}
	case AssertContiguous:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
