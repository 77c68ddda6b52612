package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ordering/internal/compiler"
	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Group    map[string]string
	Options  bool
	Language string
}

// ListResult is a group's records in position order.
type ListResult struct {
	Collection string     `json:"collection"`
	Group      string     `json:"group"`
	Items      []ItemView `json:"items"`
}

func (r ListResult) String() string {
	if len(r.Items) == 0 {
		return fmt.Sprintf("%s %s: empty", r.Collection, r.Group)
	}
	return fmt.Sprintf("%s %s:\n%s", r.Collection, r.Group, itemLines(r.Items))
}

// OptionView is one entry of a presentation list.
type OptionView struct {
	Key   string `json:"index"`
	Label string `json:"value"`
}

// OptionsResult is a group's presentation list.
type OptionsResult struct {
	Collection string       `json:"collection"`
	Group      string       `json:"group"`
	Language   string       `json:"language"`
	Options    []OptionView `json:"options"`
}

func (r OptionsResult) String() string {
	var b strings.Builder
	for i, o := range r.Options {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%q\t%s", o.Key, o.Label)
	}
	return b.String()
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List a group in position order",
		Long: `List the records of one group in position order.

With --options, print the presentation list offered to editors instead:
a "First" entry, one entry per record, and a "Last" entry, labelled in the
language chosen by --lang (an Accept-Language value).

Examples:
  ordering list tasks --group project=p1
  ordering list tasks --group project=p1 --options --lang ru`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Options {
				return runOptions(opts, cmd, args[0])
			}
			return runRecord(opts.RootOptions, cmd, args[0], "list", func(ctx context.Context, svc *items.Service, c compiler.Collection) (any, error) {
				list, err := svc.List(ctx, opts.Group)
				if err != nil {
					return nil, err
				}
				result := ListResult{
					Collection: c.Name(),
					Group:      c.Definition.Scope(opts.Group).Group.Encode(),
					Items:      make([]ItemView, 0, len(list)),
				}
				for _, item := range list {
					result.Items = append(result.Items, newItemView(item))
				}
				return result, nil
			})
		},
	}

	cmd.Flags().StringToStringVar(&opts.Group, "group", nil, "group fields as field=value")
	cmd.Flags().BoolVar(&opts.Options, "options", false, "print the presentation list")
	cmd.Flags().StringVar(&opts.Language, "lang", "", "label language as an Accept-Language value (default: configured locale)")

	return cmd
}

func runOptions(opts *ListOptions, cmd *cobra.Command, collection string) error {
	formatter := opts.formatter(cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail("failed to open workspace", err)
	}
	defer ws.Close()

	svc, c, err := ws.service(collection)
	if err != nil {
		return formatter.Fail("list failed", err)
	}
	if c.List == nil {
		return formatter.Fail("list failed", ordering.NewConfigError(c.Name(), "collection defines no list key and value"))
	}
	if err := c.Definition.RequireGroup(opts.Group); err != nil {
		return formatter.Fail("list failed", err)
	}

	presenter := ws.presenter()
	tag := presenter.Localizer().Match(opts.Language)
	options, err := presenter.List(cmd.Context(), svc.Coordinator(), opts.Group, *c.List, tag)
	if err != nil {
		return formatter.Fail("list failed", err)
	}

	result := OptionsResult{
		Collection: c.Name(),
		Group:      c.Definition.Scope(opts.Group).Group.Encode(),
		Language:   tag.String(),
		Options:    make([]OptionView, 0, len(options)),
	}
	for _, o := range options {
		result.Options = append(result.Options, OptionView{Key: o.Key, Label: o.Label})
	}
	return formatter.Success(result)
}
