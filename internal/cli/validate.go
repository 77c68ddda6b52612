package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ValidationIssue is one problem found in the definitions.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// CollectionSummary describes one valid collection.
type CollectionSummary struct {
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Group    []string `json:"group,omitempty"`
	List     bool     `json:"list"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	Collections []CollectionSummary `json:"collections,omitempty"`
	Errors      []ValidationIssue   `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [defs-dir]",
		Short: "Validate collection definitions",
		Long: `Validate the CUE collection definitions without touching the database.

Every collection needs a position field; group fields must be distinct and
must not include the position field; a list block needs both key and value.
Defaults to the configured definitions directory.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if dir == "" {
		settings, err := opts.Settings()
		if err != nil {
			return formatter.Fail("failed to load config", err)
		}
		dir = settings.Definitions
	}

	loadResult, loadErrors := LoadCollections(dir, LoadModeCollectAll)

	// Directory not found, no files, CUE syntax errors
	if loadResult == nil {
		return formatter.Fail("validation failed", loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	issues := make([]ValidationIssue, 0, len(loadErrors))
	for _, err := range loadErrors {
		issues = append(issues, issueFromError(err))
	}
	if len(issues) > 0 {
		return outputValidationErrors(formatter, issues)
	}

	result := ValidationResult{Valid: true}
	for _, c := range loadResult.Collections {
		formatter.VerboseLog("Validated collection: %s", c.Name())
		result.Collections = append(result.Collections, CollectionSummary{
			Name:     c.Name(),
			Position: c.Definition.PositionField,
			Group:    c.Definition.GroupFields,
			List:     c.List != nil,
		})
	}
	return outputValidateSuccess(formatter, result)
}

func issueFromError(err error) ValidationIssue {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.File = loadErr.Pos.Filename()
			issue.Line = loadErr.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	for _, c := range result.Collections {
		line := fmt.Sprintf("  %s: position=%s", c.Name, c.Position)
		if len(c.Group) > 0 {
			line += " group=" + strings.Join(c.Group, ",")
		}
		if c.List {
			line += " list"
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d collection(s) valid\n", len(result.Collections))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
