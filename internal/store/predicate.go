package store

import (
	"strings"

	"github.com/roach88/ordering/internal/ordering"
)

// predicate is a WHERE clause under construction.
// Values are never interpolated - always use ? placeholders.
type predicate struct {
	clauses []string
	params  []any
}

// and appends a clause and its parameters.
func (p *predicate) and(clause string, params ...any) *predicate {
	p.clauses = append(p.clauses, clause)
	p.params = append(p.params, params...)
	return p
}

// SQL returns the clause joined with AND, or an always-true clause.
func (p *predicate) SQL() string {
	if len(p.clauses) == 0 {
		return "1 = 1"
	}
	return strings.Join(p.clauses, " AND ")
}

// Params returns the bound values in placeholder order.
func (p *predicate) Params() []any {
	return p.params
}

// scopePredicate matches every row of one group.
func scopePredicate(scope ordering.Scope) *predicate {
	p := &predicate{}
	return p.and("collection = ?", scope.Collection).
		and("group_key = ?", scope.Group.Encode())
}

// shiftPredicate matches the rows of one group inside a shift's range.
func shiftPredicate(scope ordering.Scope, s ordering.Shift) *predicate {
	p := scopePredicate(scope).and("position >= ?", s.From)
	if !s.Open {
		p.and("position <= ?", s.To)
	}
	return p
}
