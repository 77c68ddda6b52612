package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CollectionCheck is the check outcome of one collection.
type CollectionCheck struct {
	Collection string `json:"collection"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// CheckResult holds the outcome of the check command.
type CheckResult struct {
	Collections []CollectionCheck `json:"collections"`
	Failed      int               `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [collection...]",
		Short: "Verify every group is contiguous",
		Long: `Verify that the positions of every group are exactly 0..n-1.

Checks all defined collections unless some are named. Gaps and duplicates
can only appear when the database is written around this tool; repair them
with renumber.

Exit codes:
  0 - All groups contiguous
  1 - One or more groups broken
  2 - Command error`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, names []string) error {
	formatter := opts.formatter(cmd)

	ws, err := openWorkspace(opts, cmd)
	if err != nil {
		return formatter.Fail("failed to open workspace", err)
	}
	defer ws.Close()

	if len(names) == 0 {
		for _, c := range ws.defs.Collections {
			names = append(names, c.Name())
		}
	}

	result := CheckResult{Collections: make([]CollectionCheck, 0, len(names))}
	for _, name := range names {
		svc, _, err := ws.service(name)
		if err != nil {
			return formatter.Fail("check failed", err)
		}
		check := CollectionCheck{Collection: name, OK: true}
		if err := svc.Check(cmd.Context()); err != nil {
			check.OK = false
			check.Error = err.Error()
			result.Failed++
		}
		formatter.VerboseLog("checked %s: ok=%t", name, check.OK)
		result.Collections = append(result.Collections, check)
	}

	if formatter.JSON() {
		response := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    ErrCodeConsistency,
				Message: fmt.Sprintf("%d collection(s) not contiguous", result.Failed),
			}
		}
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(response); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, c := range result.Collections {
			if c.OK {
				fmt.Fprintf(w, "✓ %s\n", c.Collection)
			} else {
				fmt.Fprintf(w, "✗ %s\n  %s\n", c.Collection, c.Error)
			}
		}
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d collection(s) not contiguous", result.Failed))
	}
	return nil
}
