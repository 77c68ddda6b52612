package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDefs writes a definitions directory holding one CUE file.
func writeDefs(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(content), 0644))
	return dir
}

func TestValidateValidDefinitions(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testDefsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "  menu: position=sort\n")
	assert.Contains(t, output, "  tasks: position=position group=project list\n")
	assert.Contains(t, output, "✓ 2 collection(s) valid")
}

func TestValidateValidDefinitionsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testDefsDir})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var result ValidationResult
	decodeData(t, resp, &result)
	assert.True(t, result.Valid)
	assert.Equal(t, []CollectionSummary{
		{Name: "menu", Position: "sort"},
		{Name: "tasks", Position: "position", Group: []string{"project"}, List: true},
	}, result.Collections)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/defs"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E005]")
}

func TestValidateEmptyDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error [E003]")
}

func TestValidateSyntaxError(t *testing.T) {
	dir := writeDefs(t, "package defs\n\ncollection: tasks: {\n")

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Regexp(t, `Error \[E00[46]\]`, buf.String())
}

func TestValidateInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs string
		code string
	}{
		{
			name: "missing position",
			defs: "package defs\n\ncollection: tasks: {group: [\"project\"]}\n",
			code: ErrCodePositionField,
		},
		{
			name: "group not a list",
			defs: "package defs\n\ncollection: tasks: {position: \"position\", group: \"project\"}\n",
			code: ErrCodeGroupFields,
		},
		{
			name: "position used as group",
			defs: "package defs\n\ncollection: tasks: {position: \"position\", group: [\"position\"]}\n",
			code: ErrCodeInvalidCollection,
		},
		{
			name: "list without value",
			defs: "package defs\n\ncollection: tasks: {position: \"position\", list: {key: \"id\"}}\n",
			code: ErrCodeListFields,
		},
		{
			name: "no collections",
			defs: "package defs\n\nother: 1\n",
			code: ErrCodeNoCollections,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			cmd := NewValidateCommand(&RootOptions{Format: "json"})
			cmd.SetOut(buf)
			cmd.SetArgs([]string{writeDefs(t, tt.defs)})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := writeDefs(t, `package defs

collection: a: {group: ["x"]}
collection: b: {position: "p", list: {value: "title"}}
collection: c: {position: "p"}
`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, "E101: collection.a: position field is required")
	assert.Contains(t, output, "E104: collection.b: list key field is required")
}

func TestValidateDefaultsToConfiguredDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text", Definitions: testDefsDir})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ 2 collection(s) valid")
}
