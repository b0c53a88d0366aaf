package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "carrinho", cmd.Use)
	assert.Contains(t, cmd.Long, "offline-first")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{
		"add", "list", "remove", "close", "reopen",
		"sync", "status", "history", "insights",
		"export", "import", "clear",
	}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "status", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// runCLI executes the root command against a database inside dir.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	full := append([]string{
		"--db", filepath.Join(dir, "cli-test.db"),
		"--env", filepath.Join(dir, "no-such.env"),
	}, args...)

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAddAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "add",
		"--date", "2026-08-28",
		"--name", "Café Torrado", "--brand", "Pilão",
		"--price", "12,90", "--qty", "1,5", "--weight",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Added Café Torrado")
	assert.Contains(t, out, "R$ 19,35")

	out, err = runCLI(t, dir, "list", "--date", "2026-08-28", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	cart := data["cart"].(map[string]interface{})
	assert.Equal(t, "2026-08-28", cart["date"])
	assert.Equal(t, float64(1935), cart["totalCents"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
}

func TestListMissingCart(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "list", "--date", "2026-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "No cart for 2026-01-01")
}

func TestRemoveUnknownItem(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "add", "--date", "2026-08-28", "--name", "Café", "--price", "12,90")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "remove", "--date", "2026-08-28", "--id", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCloseThenAddFails(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "add", "--date", "2026-08-28", "--name", "Café", "--price", "12,90")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "close", "--date", "2026-08-28")
	require.NoError(t, err)
	assert.Contains(t, out, "CLOSED")

	_, err = runCLI(t, dir, "add", "--date", "2026-08-28", "--name", "Leite", "--price", "4,79")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExportClearImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "add", "--date", "2026-08-28", "--name", "Café", "--price", "12,90")
	require.NoError(t, err)

	backup := filepath.Join(dir, "backup.json")
	_, err = runCLI(t, dir, "export", "--out", backup)
	require.NoError(t, err)

	// Clear refuses without --force.
	_, err = runCLI(t, dir, "clear")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runCLI(t, dir, "clear", "--force")
	require.NoError(t, err)
	out, err := runCLI(t, dir, "list", "--date", "2026-08-28")
	require.NoError(t, err)
	assert.Contains(t, out, "No cart")

	_, err = runCLI(t, dir, "import", "--in", backup)
	require.NoError(t, err)
	out, err = runCLI(t, dir, "list", "--date", "2026-08-28")
	require.NoError(t, err)
	assert.Contains(t, out, "Café")
}

func TestStatusWithoutRemote(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "add", "--date", "2026-08-28", "--name", "Café", "--price", "12,90")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "status", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["signedIn"])
	// The open-day and add-item ops are both pending.
	assert.Equal(t, float64(2), data["queueDepth"])
}
