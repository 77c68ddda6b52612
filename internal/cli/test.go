package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ordering/internal/harness"
	"github.com/roach88/ordering/internal/memstore"
)

// Scenario backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendBoth   = "both"
)

// Golden trace states reported per scenario.
const (
	GoldenMatched = "matched"
	GoldenUpdated = "updated"
	GoldenMissing = "missing"
	GoldenStale   = "stale"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update  bool   // regenerate golden files
	Filter  string // glob over scenario file names
	Backend string // sqlite, memory or both
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Golden string   `json:"golden,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Backend   string           `json:"backend"`
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run ordering scenarios",
		Long: `Run YAML ordering scenarios, each against a fresh empty store.

Every scenario declares its collection inline, runs its setup and flow
steps, and checks its assertions. When <scenarios-dir>/golden/<name>.golden
exists the flow trace must match it byte for byte.

With --backend both every scenario runs on SQLite and on the in-memory
store, and the two traces must be identical.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  ordering test ./scenarios
  ordering test ./scenarios --filter "e_*"
  ordering test ./scenarios --backend both
  ordering test ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Backend, "backend", BackendSQLite, "store to run against (sqlite, memory, both)")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !slices.Contains([]string{BackendSQLite, BackendMemory, BackendBoth}, opts.Backend) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid backend %q (use sqlite, memory or both)", opts.Backend))
	}
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	out := opts.formatter(cmd)
	result := TestResult{
		Backend:   opts.Backend,
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	if len(files) == 0 {
		if out.JSON() {
			return out.Success(result)
		}
		fmt.Fprintln(out.Writer, "No scenarios found.")
		return nil
	}

	for _, file := range files {
		r := runScenario(ctx, file, opts)
		result.Scenarios = append(result.Scenarios, r)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if !out.JSON() {
			printScenarioResult(out.Writer, r)
		}
	}

	if out.JSON() {
		return outputTestJSON(out, result)
	}
	return outputTestText(out.Writer, result)
}

// findScenarioFiles lists the YAML files under dir whose base name, without
// extension, matches filter. Golden files are skipped by extension.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			// The pattern was checked above.
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario loads one file, runs it on the selected backend(s) and checks
// the trace against its golden file.
func runScenario(ctx context.Context, file string, opts *TestOptions) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}
	failed := func(format string, args ...any) ScenarioResult {
		return ScenarioResult{Name: scenario.Name, Errors: []string{fmt.Sprintf(format, args...)}}
	}

	var result *harness.Result
	switch opts.Backend {
	case BackendMemory:
		result, err = harness.RunWith(ctx, scenario, memstore.New())
	default:
		result, err = harness.Run(scenario)
	}
	if err != nil {
		return failed("execution failed: %v", err)
	}
	data, err := harness.NewSnapshot(scenario, result).Marshal()
	if err != nil {
		return failed("failed to marshal trace: %v", err)
	}

	if opts.Backend == BackendBoth {
		other, err := harness.RunWith(ctx, scenario, memstore.New())
		if err != nil {
			return failed("execution failed on %s: %v", BackendMemory, err)
		}
		otherData, err := harness.NewSnapshot(scenario, other).Marshal()
		if err != nil {
			return failed("failed to marshal trace: %v", err)
		}
		if !bytes.Equal(data, otherData) {
			result.AddError(fmt.Sprintf("%s and %s traces differ", BackendSQLite, BackendMemory))
		}
	}

	golden, err := checkGolden(goldenFilePath(file), data, opts.Update)
	if err != nil {
		result.AddError(err.Error())
	}

	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Steps:  len(result.Trace),
		Golden: golden,
		Errors: result.Errors,
	}
}

// checkGolden writes or compares the golden trace and returns its state.
// A stale trace is reported as an error.
func checkGolden(path string, data []byte, update bool) (string, error) {
	if update {
		if err := writeGoldenFile(path, data); err != nil {
			return "", fmt.Errorf("failed to update golden file: %w", err)
		}
		return GoldenUpdated, nil
	}
	golden, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return GoldenMissing, nil
	case err != nil:
		return "", fmt.Errorf("failed to read golden file: %w", err)
	case !bytes.Equal(golden, data):
		return GoldenStale, fmt.Errorf("trace does not match golden file (run with --update to regenerate)")
	}
	return GoldenMatched, nil
}

// goldenFilePath returns <dir>/golden/<name>.golden for <dir>/<name>.yaml.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printScenarioResult(w io.Writer, r ScenarioResult) {
	if !r.Pass {
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	switch r.Golden {
	case GoldenUpdated:
		fmt.Fprintf(w, "✓ %s (%d steps, golden updated)\n", r.Name, r.Steps)
	case GoldenMissing:
		fmt.Fprintf(w, "✓ %s (%d steps, no golden file)\n", r.Name, r.Steps)
	default:
		fmt.Fprintf(w, "✓ %s (%d steps)\n", r.Name, r.Steps)
	}
}

func outputTestJSON(out *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return out.Success(result)
	}
	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := out.Error("E_TEST_FAILED", msg, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

func outputTestText(w io.Writer, result TestResult) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary (%s): %d passed, %d failed, %d total\n",
		result.Backend, result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
