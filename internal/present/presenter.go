package present

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ordering/internal/ordering"
)

// ListSpec names the fields an option list is built from.
type ListSpec struct {
	// KeyField provides each option's key.
	KeyField string

	// ValueField provides each option's label.
	ValueField string
}

// Validate returns a configuration error when a field is unset.
func (s ListSpec) Validate(collection string) error {
	if strings.TrimSpace(s.KeyField) == "" {
		return ordering.NewConfigError(collection, `the "keyField" property must be set`)
	}
	if strings.TrimSpace(s.ValueField) == "" {
		return ordering.NewConfigError(collection, `the "valueField" property must be set`)
	}
	return nil
}

// Option is one entry of a presentation list.
type Option struct {
	Key   string
	Label string
}

// Source yields a group's entries in position order.
type Source interface {
	Definition() ordering.Definition
	ListOrdered(ctx context.Context, group ordering.GroupKey) iter.Seq2[ordering.Entry, error]
}

// Presenter builds presentation lists.
type Presenter struct {
	localizer *Localizer
}

// NewPresenter returns a presenter using l for sentinel labels.
func NewPresenter(l *Localizer) *Presenter {
	return &Presenter{localizer: l}
}

// Localizer returns the presenter's localizer.
func (p *Presenter) Localizer() *Localizer {
	return p.localizer
}

// List returns the "First" sentinel, one option per record of the group in
// position order, and the "Last" sentinel.
//
// Fields resolve as: "id", the definition's position field, a group field,
// then the record's own fields. A record without the field yields "".
func (p *Presenter) List(ctx context.Context, src Source, group ordering.GroupKey, spec ListSpec, tag language.Tag) ([]Option, error) {
	def := src.Definition()
	if err := spec.Validate(def.Collection); err != nil {
		return nil, err
	}

	labels := p.localizer.Labels(tag)
	options := []Option{{Key: FirstKey, Label: labels.First}}
	for e, err := range src.ListOrdered(ctx, group) {
		if err != nil {
			return nil, fmt.Errorf("presentation list: %w", err)
		}
		options = append(options, Option{
			Key:   fieldValue(def, e, spec.KeyField),
			Label: norm.NFC.String(fieldValue(def, e, spec.ValueField)),
		})
	}
	options = append(options, Option{Key: LastKey, Label: labels.Last})
	return options, nil
}

func fieldValue(def ordering.Definition, e ordering.Entry, field string) string {
	switch {
	case field == "id":
		return e.ID
	case field == def.PositionField:
		return strconv.Itoa(e.Position)
	case slices.Contains(def.GroupFields, field):
		return e.Group[field]
	default:
		return e.Fields[field]
	}
}
