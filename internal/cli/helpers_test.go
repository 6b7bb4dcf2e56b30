package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepaway/internal/testutil"
)

// cascadeYAML throws forward so items are handled more than once per round.
// After 5 undampened rounds the counts are [3 18 20].
const cascadeYAML = `workers:
  - {id: 0, items: [1, 2, 3], operation: old + 1, divisor: 2, if_true: 1, if_false: 2}
  - {id: 1, items: [], operation: old * 3, divisor: 3, if_true: 2, if_false: 0}
  - {id: 2, items: [4], operation: old * old, divisor: 5, if_true: 0, if_false: 1}
`

// writeFile writes content to name inside a fresh temp dir and returns the
// path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func exampleNotesFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, "notes.txt", testutil.ExampleNotes)
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// rootWithEnv builds the root command against a fixed environment.
func rootWithEnv(env map[string]string) *cobra.Command {
	return newRootCommand(&RootOptions{Lookuper: envconfig.MapLookuper(env)})
}
