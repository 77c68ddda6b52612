package items

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/roach88/ordering/internal/ordering"
)

// Service creates, moves, transfers and deletes the items of one collection,
// running the ordering hooks inside each write transaction.
type Service struct {
	def     ordering.Definition
	backend Backend
	coord   *ordering.Coordinator
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides the UUIDv7 default (for tests and scenarios).
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the logger used by the service and its coordinator.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a service for def persisted through backend.
func NewService(def ordering.Definition, backend Backend, opts ...Option) (*Service, error) {
	s := &Service{
		def:     def,
		backend: backend,
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	coord, err := ordering.New(def, backend, ordering.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.coord = coord
	return s, nil
}

// Definition returns the collection definition.
func (s *Service) Definition() ordering.Definition { return s.def }

// Coordinator returns the underlying coordinator.
func (s *Service) Coordinator() *ordering.Coordinator { return s.coord }

// NewItem describes an item to create.
type NewItem struct {
	// ID is optional; a generated one is used when empty.
	ID       string
	Group    ordering.GroupKey
	Position ordering.Position
	Fields   map[string]string
}

// Change describes an update. Nil members are left unchanged.
type Change struct {
	// Group holds the group fields to change; unlisted fields keep their value.
	Group ordering.GroupKey

	// Position is the requested new position.
	Position *ordering.Position

	// Fields are merged into the item's fields. An empty value removes the field.
	Fields map[string]string
}

// Create inserts a new item at its normalized position.
func (s *Service) Create(ctx context.Context, in NewItem) (Item, error) {
	if err := s.def.RequireGroup(in.Group); err != nil {
		return Item{}, err
	}
	if err := s.checkFields(in.Fields); err != nil {
		return Item{}, err
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.ids.Generate()
	}
	item := Item{
		Collection: s.def.Collection,
		ID:         id,
		Group:      in.Group.Project(s.def.GroupFields),
		Fields:     maps.Clone(in.Fields),
	}
	if item.Fields == nil {
		item.Fields = map[string]string{}
	}
	item.Request(in.Position)

	err := s.backend.InTx(ctx, func(tx Tx) error {
		if err := s.coord.BeforeCreate(ctx, tx, &item); err != nil {
			return err
		}
		return tx.Insert(ctx, item)
	})
	if err != nil {
		return Item{}, fmt.Errorf("create %s/%s: %w", s.def.Collection, id, err)
	}

	s.logger.Info("item created",
		"collection", s.def.Collection,
		"id", item.ID,
		"group", item.Group.Encode(),
		"requested", in.Position.String(),
		"position", item.Position,
	)
	return item, nil
}

// Move changes an item's position inside its group.
func (s *Service) Move(ctx context.Context, id string, to ordering.Position) (Item, error) {
	return s.Update(ctx, id, Change{Position: &to})
}

// Transfer moves an item into another group at the requested position.
func (s *Service) Transfer(ctx context.Context, id string, group ordering.GroupKey, to ordering.Position) (Item, error) {
	return s.Update(ctx, id, Change{Group: group, Position: &to})
}

// Update applies a change, running the ordering hooks around the save.
func (s *Service) Update(ctx context.Context, id string, change Change) (Item, error) {
	if err := s.checkFields(change.Fields); err != nil {
		return Item{}, err
	}

	var updated Item
	var prior ordering.Placement
	err := s.backend.InTx(ctx, func(tx Tx) error {
		old, err := tx.Get(ctx, s.def.Collection, id)
		if err != nil {
			return err
		}
		prior = old.Placement()

		next := old.Clone()
		if next.Group == nil {
			next.Group = ordering.GroupKey{}
		}
		if next.Fields == nil {
			next.Fields = map[string]string{}
		}
		for field, value := range change.Group {
			next.Group[field] = value
		}
		next.Group = next.Group.Project(s.def.GroupFields)
		for field, value := range change.Fields {
			if value == "" {
				delete(next.Fields, field)
				continue
			}
			next.Fields[field] = value
		}
		if change.Position != nil {
			next.Request(*change.Position)
		} else {
			next.Request(ordering.At(old.Position))
		}

		if err := s.coord.BeforeUpdate(ctx, tx, prior, &next); err != nil {
			return err
		}
		if err := tx.Save(ctx, next); err != nil {
			return err
		}
		if err := s.coord.AfterUpdate(ctx, tx, prior, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return Item{}, fmt.Errorf("update %s/%s: %w", s.def.Collection, id, err)
	}

	s.logger.Info("item updated",
		"collection", s.def.Collection,
		"id", id,
		"from_group", prior.Group.Encode(),
		"from", prior.Position,
		"group", updated.Group.Encode(),
		"position", updated.Position,
	)
	return updated, nil
}

// Delete removes an item and closes the gap it leaves.
func (s *Service) Delete(ctx context.Context, id string) (Item, error) {
	var removed Item
	err := s.backend.InTx(ctx, func(tx Tx) error {
		item, err := tx.Get(ctx, s.def.Collection, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, s.def.Collection, id); err != nil {
			return err
		}
		if err := s.coord.AfterDelete(ctx, tx, item.Placement()); err != nil {
			return err
		}
		removed = item
		return nil
	})
	if err != nil {
		return Item{}, fmt.Errorf("delete %s/%s: %w", s.def.Collection, id, err)
	}

	s.logger.Info("item deleted",
		"collection", s.def.Collection,
		"id", id,
		"group", removed.Group.Encode(),
		"position", removed.Position,
	)
	return removed, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	var item Item
	err := s.backend.InTx(ctx, func(tx Tx) error {
		var err error
		item, err = tx.Get(ctx, s.def.Collection, id)
		return err
	})
	return item, err
}

// List returns a group's items by ascending position.
func (s *Service) List(ctx context.Context, group ordering.GroupKey) ([]Item, error) {
	if err := s.def.RequireGroup(group); err != nil {
		return nil, err
	}
	var out []Item
	for e, err := range s.coord.ListOrdered(ctx, group) {
		if err != nil {
			return nil, err
		}
		out = append(out, FromEntry(s.def.Collection, e))
	}
	return out, nil
}

// Renumber compacts one group and returns the number of items that moved.
func (s *Service) Renumber(ctx context.Context, group ordering.GroupKey) (int64, error) {
	if err := s.def.RequireGroup(group); err != nil {
		return 0, err
	}
	var n int64
	err := s.backend.InTx(ctx, func(tx Tx) error {
		var err error
		n, err = s.coord.Renumber(ctx, tx, group)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("group renumbered",
		"collection", s.def.Collection,
		"group", group.Project(s.def.GroupFields).Encode(),
		"changed", n,
	)
	return n, nil
}

// RenumberAll compacts every group of the collection.
func (s *Service) RenumberAll(ctx context.Context) (int64, error) {
	groups, err := s.backend.Groups(ctx, s.def.Collection)
	if err != nil {
		return 0, fmt.Errorf("renumber %s: %w", s.def.Collection, err)
	}
	var total int64
	for _, g := range groups {
		n, err := s.Renumber(ctx, g)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Check verifies every group of the collection and returns the first
// violation found.
func (s *Service) Check(ctx context.Context) error {
	groups, err := s.backend.Groups(ctx, s.def.Collection)
	if err != nil {
		return fmt.Errorf("check %s: %w", s.def.Collection, err)
	}
	for _, g := range groups {
		if err := s.coord.Verify(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// checkFields rejects writes to fields ordering maintains itself.
func (s *Service) checkFields(fields map[string]string) error {
	for field := range fields {
		if field == "id" || s.def.Reserved(field) {
			return ordering.NewReservedFieldError(s.def.Collection, field)
		}
	}
	return nil
}
