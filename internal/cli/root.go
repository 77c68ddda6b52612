package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ordering/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigFile  string // explicit ordering.yaml
	Database    string // overrides ordering.database
	Definitions string // overrides ordering.definitions

	settings *config.Settings
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ordering CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ordering",
		Short: "Ordering - contiguous record positions",
		Long: `Keep records of a collection at contiguous positions 0..n-1 within their group.

Collections are defined in CUE; records live in SQLite. Every create, move,
transfer and delete shifts the neighbours so positions never gap or collide.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ordering.yaml in . or ./config)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Definitions, "defs", "", "collection definitions directory (overrides config)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewTransferCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRenumberCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Settings loads the runtime settings once; the --db and --defs flags win
// over the file and environment.
func (o *RootOptions) Settings() (*config.Settings, error) {
	if o.settings != nil {
		return o.settings, nil
	}
	settings, _, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		settings.Database = o.Database
	}
	if o.Definitions != "" {
		settings.Definitions = o.Definitions
	}
	o.settings = settings
	return settings, nil
}

// Logger builds the command logger writing to w.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	var l *config.Logging
	if o.settings != nil {
		l = o.settings.Logging
	}
	return config.NewLogger(l, w, o.Verbose)
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
