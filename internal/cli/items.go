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

// recordFunc performs one record command against a collection's service.
// The returned value is printed with fmt.Println in text mode and as the
// response data in JSON mode.
type recordFunc func(ctx context.Context, svc *items.Service, c compiler.Collection) (any, error)

// runRecord opens the workspace, resolves the collection and runs fn.
func runRecord(opts *RootOptions, cmd *cobra.Command, collection, action string, fn recordFunc) error {
	formatter := opts.formatter(cmd)

	ws, err := openWorkspace(opts, cmd)
	if err != nil {
		return formatter.Fail("failed to open workspace", err)
	}
	defer ws.Close()

	svc, c, err := ws.service(collection)
	if err != nil {
		return formatter.Fail(action+" failed", err)
	}

	data, err := fn(cmd.Context(), svc, c)
	if err != nil {
		return formatter.Fail(action+" failed", err)
	}
	return formatter.Success(data)
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	ID       string
	Group    map[string]string
	Fields   map[string]string
	Position string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <collection>",
		Short: "Add a record at a position",
		Long: `Add a record to a collection.

Without --position the record goes to the end of its group. An empty
--position "" puts it first. Records at or after the requested position
move down by one.

Examples:
  ordering add tasks --group project=p1 --field title="Write docs"
  ordering add tasks --id t9 --group project=p1 --position 0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts.RootOptions, cmd, args[0], "add", func(ctx context.Context, svc *items.Service, _ compiler.Collection) (any, error) {
				pos, err := parsePosition(cmd, opts.Position)
				if err != nil {
					return nil, err
				}
				item, err := svc.Create(ctx, items.NewItem{
					ID:       opts.ID,
					Group:    opts.Group,
					Position: pos,
					Fields:   opts.Fields,
				})
				if err != nil {
					return nil, err
				}
				return newItemView(item), nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "record ID (default: generated UUIDv7)")
	cmd.Flags().StringToStringVar(&opts.Group, "group", nil, "group fields as field=value")
	cmd.Flags().StringToStringVar(&opts.Fields, "field", nil, "record fields as field=value")
	cmd.Flags().StringVar(&opts.Position, "position", "", `requested position ("" for first)`)

	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <collection> <id> <position>",
		Short: "Move a record within its group",
		Long: `Move a record to another position within its group.

Positions beyond the end of the group clamp to the last slot; negative
positions go last; "" goes first.

Examples:
  ordering move tasks t1 0
  ordering move tasks t1 ""`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(rootOpts, cmd, args[0], "move", func(ctx context.Context, svc *items.Service, _ compiler.Collection) (any, error) {
				pos, err := ordering.ParsePosition(args[2])
				if err != nil {
					return nil, err
				}
				item, err := svc.Move(ctx, args[1], pos)
				if err != nil {
					return nil, err
				}
				return newItemView(item), nil
			})
		},
	}

	return cmd
}

// TransferOptions holds flags for the transfer command.
type TransferOptions struct {
	*RootOptions
	Group    map[string]string
	Position string
}

// NewTransferCommand creates the transfer command.
func NewTransferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transfer <collection> <id>",
		Short: "Move a record to another group",
		Long: `Move a record to another group.

The old group closes the gap; the new group makes room at the requested
position, or appends without --position.

Example:
  ordering transfer tasks t1 --group project=p2 --position 0`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts.RootOptions, cmd, args[0], "transfer", func(ctx context.Context, svc *items.Service, _ compiler.Collection) (any, error) {
				pos, err := parsePosition(cmd, opts.Position)
				if err != nil {
					return nil, err
				}
				item, err := svc.Transfer(ctx, args[1], opts.Group, pos)
				if err != nil {
					return nil, err
				}
				return newItemView(item), nil
			})
		},
	}

	cmd.Flags().StringToStringVar(&opts.Group, "group", nil, "new group fields as field=value (required)")
	cmd.Flags().StringVar(&opts.Position, "position", "", `requested position ("" for first)`)
	_ = cmd.MarkFlagRequired("group")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "delete <collection> <id>",
		Short:         "Delete a record and close the gap",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(rootOpts, cmd, args[0], "delete", func(ctx context.Context, svc *items.Service, _ compiler.Collection) (any, error) {
				item, err := svc.Delete(ctx, args[1])
				if err != nil {
					return nil, err
				}
				return newItemView(item), nil
			})
		},
	}

	return cmd
}

// RenumberResult reports a renumber run.
type RenumberResult struct {
	Collection string `json:"collection"`
	Changed    int64  `json:"changed"`
}

func (r RenumberResult) String() string {
	return fmt.Sprintf("%s: %d record(s) renumbered", r.Collection, r.Changed)
}

// RenumberOptions holds flags for the renumber command.
type RenumberOptions struct {
	*RootOptions
	Group map[string]string
}

// NewRenumberCommand creates the renumber command.
func NewRenumberCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenumberOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "renumber <collection>",
		Short: "Compact positions to 0..n-1",
		Long: `Rewrite positions so each group is contiguous again, keeping the
current order. Without --group every group of the collection is renumbered.

Examples:
  ordering renumber tasks --group project=p1
  ordering renumber tasks`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts.RootOptions, cmd, args[0], "renumber", func(ctx context.Context, svc *items.Service, c compiler.Collection) (any, error) {
				var n int64
				var err error
				if cmd.Flags().Changed("group") || !c.Definition.Grouped() {
					n, err = svc.Renumber(ctx, opts.Group)
				} else {
					n, err = svc.RenumberAll(ctx)
				}
				if err != nil {
					return nil, err
				}
				return RenumberResult{Collection: c.Name(), Changed: n}, nil
			})
		},
	}

	cmd.Flags().StringToStringVar(&opts.Group, "group", nil, "group fields as field=value")

	return cmd
}

// itemLines renders items one per line as "position id".
func itemLines(list []ItemView) string {
	var b strings.Builder
	for i, v := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%3d  %s", v.Position, v.ID)
	}
	return b.String()
}
