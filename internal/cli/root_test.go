package cli

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "keepaway", cmd.Use)
	assert.Contains(t, cmd.Long, "product of the two largest")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "validate", "test", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for name, def := range map[string]string{
		"db":     "",
		"mode":   "",
		"rounds": "0",
		"dampen": "false",
		"trace":  "false",
	} {
		flag := runCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(rootWithEnv(nil), "--format", "xml", "validate", exampleNotesFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatFromEnvironment(t *testing.T) {
	path := exampleNotesFile(t)

	out, _, err := execute(rootWithEnv(map[string]string{"KEEPAWAY_FORMAT": "json"}), "validate", path)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	// An explicit flag wins over the environment.
	out, _, err = execute(rootWithEnv(map[string]string{"KEEPAWAY_FORMAT": "json"}), "--format", "text", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 4 workers valid")
}

func TestDatabaseFromEnvironment(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	env := map[string]string{"KEEPAWAY_DB": dbPath}

	_, _, err := execute(rootWithEnv(env), "run", "--mode", "dampened", exampleNotesFile(t))
	require.NoError(t, err)

	out, _, err := execute(rootWithEnv(env), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "dampened")
	assert.Contains(t, out, "10605")
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		opts    RootOptions
		want    slog.Level
		wantErr bool
	}{
		{name: "default", want: slog.LevelInfo},
		{name: "env", opts: RootOptions{Env: Config{LogLevel: "warn"}}, want: slog.LevelWarn},
		{name: "verbose wins", opts: RootOptions{Verbose: true, Env: Config{LogLevel: "error"}}, want: slog.LevelDebug},
		{name: "invalid", opts: RootOptions{Env: Config{LogLevel: "loud"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := tt.opts.logLevel()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestInvalidLogLevelEnvironment(t *testing.T) {
	_, _, err := execute(rootWithEnv(map[string]string{"KEEPAWAY_LOG_LEVEL": "loud"}), "validate", exampleNotesFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid KEEPAWAY_LOG_LEVEL")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseLogsToStderr(t *testing.T) {
	out, errOut, err := execute(rootWithEnv(nil), "--verbose", "run", "--rounds", "1", writeFile(t, "w.yaml", cascadeYAML))
	require.NoError(t, err)
	assert.Equal(t, "Score: 12\n", out)
	assert.Contains(t, errOut, "registry constructed")
}
