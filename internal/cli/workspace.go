package cli

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/ordering/internal/compiler"
	"github.com/roach88/ordering/internal/config"
	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
	"github.com/roach88/ordering/internal/present"
	"github.com/roach88/ordering/internal/store"
)

// workspace is what record commands work on: the compiled definitions and
// the open database.
type workspace struct {
	settings *config.Settings
	logger   *slog.Logger
	defs     *LoadResult
	store    *store.Store
}

// openWorkspace loads the definitions and opens the database.
// The caller must Close the workspace.
func openWorkspace(opts *RootOptions, cmd *cobra.Command) (*workspace, error) {
	settings, err := opts.Settings()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	defs, errs := LoadCollections(settings.Definitions, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	logger.Debug("definitions loaded",
		"dir", settings.Definitions,
		"files", defs.FileCount,
		"collections", len(defs.Collections),
	)

	st, err := store.Open(settings.Database,
		store.WithBusyTimeout(settings.BusyTimeout),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", settings.Database, err)
	}
	logger.Debug("database ready", "path", settings.Database, "busy_timeout", settings.BusyTimeout)

	return &workspace{settings: settings, logger: logger, defs: defs, store: st}, nil
}

// Close closes the database.
func (w *workspace) Close() error {
	return w.store.Close()
}

// collection returns the named definition.
func (w *workspace) collection(name string) (compiler.Collection, error) {
	c, ok := w.defs.Lookup(name)
	if !ok {
		known := make([]string, 0, len(w.defs.Collections))
		for _, c := range w.defs.Collections {
			known = append(known, c.Name())
		}
		return compiler.Collection{}, &unknownCollectionError{name: name, known: known}
	}
	return c, nil
}

// service returns the item service of the named collection.
func (w *workspace) service(name string) (*items.Service, compiler.Collection, error) {
	c, err := w.collection(name)
	if err != nil {
		return nil, c, err
	}
	svc, err := items.NewService(c.Definition, w.store, items.WithLogger(w.logger))
	if err != nil {
		return nil, c, err
	}
	return svc, c, nil
}

// presenter builds a presenter whose fallback language is the configured locale.
func (w *workspace) presenter() *present.Presenter {
	tag, err := language.Parse(w.settings.Locale)
	if err != nil {
		w.logger.Warn("unknown locale, using default", "locale", w.settings.Locale, "error", err)
		tag = present.DefaultLanguage
	}
	return present.NewPresenter(present.NewLocalizer(tag))
}

// ItemView is the CLI rendering of an item.
type ItemView struct {
	Collection string            `json:"collection"`
	ID         string            `json:"id"`
	Group      map[string]string `json:"group,omitempty"`
	Position   int               `json:"position"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func newItemView(item items.Item) ItemView {
	v := ItemView{
		Collection: item.Collection,
		ID:         item.ID,
		Position:   item.Position,
	}
	if len(item.Group) > 0 {
		v.Group = maps.Clone(item.Group)
	}
	if len(item.Fields) > 0 {
		v.Fields = maps.Clone(item.Fields)
	}
	return v
}

func (v ItemView) String() string {
	s := fmt.Sprintf("%s/%s position=%d", v.Collection, v.ID, v.Position)
	if len(v.Group) > 0 {
		s += " group=" + ordering.GroupKey(v.Group).Encode()
	}
	return s
}

// parsePosition reads an optional --position flag. An absent flag is Unset;
// an empty value is Blank.
func parsePosition(cmd *cobra.Command, value string) (ordering.Position, error) {
	if !cmd.Flags().Changed("position") {
		return ordering.Unset, nil
	}
	return ordering.ParsePosition(value)
}
