package ordering

import (
	"slices"
	"strings"
)

// Definition describes one ordered collection.
type Definition struct {
	// Collection names the record collection.
	Collection string

	// PositionField names the position attribute.
	PositionField string

	// GroupFields lists the fields whose equality defines a group.
	// Empty means one global group.
	GroupFields []string
}

// Validate returns a configuration error for an incomplete definition.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Collection) == "" {
		return NewConfigError("", "collection name must be set")
	}
	if strings.TrimSpace(d.PositionField) == "" {
		return NewConfigError(d.Collection, `the "position" field must be set`)
	}
	seen := make(map[string]bool, len(d.GroupFields))
	for _, f := range d.GroupFields {
		switch {
		case strings.TrimSpace(f) == "":
			return NewConfigError(d.Collection, "group field names must not be empty")
		case f == d.PositionField:
			return NewConfigError(d.Collection, "the position field cannot be a group field")
		case seen[f]:
			return NewConfigError(d.Collection, "duplicate group field "+f)
		}
		seen[f] = true
	}
	return nil
}

// Grouped reports whether the collection is partitioned.
func (d Definition) Grouped() bool {
	return len(d.GroupFields) > 0
}

// Scope returns the scope of the group that key belongs to.
func (d Definition) Scope(key GroupKey) Scope {
	return Scope{Collection: d.Collection, Group: key.Project(d.GroupFields)}
}

// RequireGroup checks that key carries a value for every group field.
func (d Definition) RequireGroup(key GroupKey) error {
	if missing := key.Missing(d.GroupFields); len(missing) > 0 {
		return NewGroupRequiredError(d.Collection, missing)
	}
	return nil
}

// Reserved reports whether field is the position field or a group field.
func (d Definition) Reserved(field string) bool {
	return field == d.PositionField || slices.Contains(d.GroupFields, field)
}

// Scope addresses one group of one collection.
type Scope struct {
	Collection string
	Group      GroupKey
}

func (s Scope) String() string {
	return s.Collection + s.Group.Encode()
}
