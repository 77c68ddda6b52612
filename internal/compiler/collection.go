// Package compiler turns CUE collection definitions into typed collections.
//
// A definition file declares one or more collections:
//
//	collection: tasks: {
//		position: "position"
//		group: ["project"]
//		list: {key: "id", value: "title"}
//	}
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ordering/internal/ordering"
	"github.com/roach88/ordering/internal/present"
)

// Collection is a compiled collection definition.
type Collection struct {
	Definition ordering.Definition

	// List is nil when the collection offers no presentation list.
	List *present.ListSpec
}

// Name returns the collection name.
func (c Collection) Name() string {
	return c.Definition.Collection
}

// CompileCollection parses a CUE value into a Collection.
// The collection name is the value's last path selector, e.g.
// collection.tasks compiles to a collection named "tasks".
func CompileCollection(v cue.Value) (*Collection, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &Collection{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		c.Definition.Collection = labels[len(labels)-1].String()
	}

	// Parse position (required)
	posVal := v.LookupPath(cue.ParsePath("position"))
	if !posVal.Exists() {
		return nil, &CompileError{
			Field:   "position",
			Message: "position field is required",
			Pos:     v.Pos(),
		}
	}
	position, err := posVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	c.Definition.PositionField = position

	// Parse group (optional, defaults to ungrouped)
	groupVal := v.LookupPath(cue.ParsePath("group"))
	if groupVal.Exists() {
		fields, err := parseStringList(groupVal, "group")
		if err != nil {
			return nil, err
		}
		c.Definition.GroupFields = fields
	}

	if err := c.Definition.Validate(); err != nil {
		return nil, &CompileError{Field: "collection", Message: err.Error(), Pos: v.Pos()}
	}

	// Parse list (optional, both fields required when present)
	listVal := v.LookupPath(cue.ParsePath("list"))
	if listVal.Exists() {
		spec, err := parseList(listVal)
		if err != nil {
			return nil, err
		}
		if err := spec.Validate(c.Definition.Collection); err != nil {
			return nil, &CompileError{Field: "list", Message: err.Error(), Pos: listVal.Pos()}
		}
		c.List = spec
	}

	return c, nil
}

// parseStringList reads a CUE list of strings.
func parseStringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of field names",
			Pos:     v.Pos(),
		}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseList reads the list: {key, value} block.
func parseList(v cue.Value) (*present.ListSpec, error) {
	spec := &present.ListSpec{}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"key", &spec.KeyField},
		{"value", &spec.ValueField},
	} {
		fv := v.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			return nil, &CompileError{
				Field:   "list." + f.name,
				Message: fmt.Sprintf("list %s field is required", f.name),
				Pos:     v.Pos(),
			}
		}
		s, err := fv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*f.dst = s
	}
	return spec, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
