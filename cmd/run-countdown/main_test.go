package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals // test binary path is set in TestMain
var testBinaryPath string

// TestMain builds the CLI binary once for the entire package and reuses it.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "run-countdown-test-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1) //nolint:gocritic // Mkdir failed, nothing to cleanup
	}
	defer os.RemoveAll(dir)

	bin := filepath.Join(dir, "run-countdown-test")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build test binary: %v\nOutput: %s\n", err, string(out))
		os.Exit(1) //nolint:gocritic // Binary failed, nothing to cleanup
	}
	testBinaryPath = bin

	code := m.Run()
	os.Exit(code)
}

func buildTestBinary(t *testing.T) string {
	if testBinaryPath == "" {
		t.Fatalf("test binary not built")
	}
	return testBinaryPath
}

// newCmd runs the binary with HOME pointed at home so the default session
// file stays inside the test's temp dir.
func newCmd(home, binary string, args ...string) *exec.Cmd {
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)
	return cmd
}

func tempHome(t *testing.T) string {
	home := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.MkdirAll(home, 0o700))
	return home
}

func writeDefinition(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLI_HelpOutput(t *testing.T) {
	binary := buildTestBinary(t)
	home := tempHome(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "root help",
			args:     []string{"--help"},
			contains: []string{"run-countdown", "deadline", "run", "status", "session", "--storage-file", "--verbose"},
		},
		{
			name:     "run help",
			args:     []string{"run", "--help"},
			contains: []string{"--deadline", "--start", "--in", "--file", "--tui", "--on-expire"},
		},
		{
			name:     "status help",
			args:     []string{"status", "--help"},
			contains: []string{"PATH", "--json", ".countdown"},
		},
		{
			name:     "session help",
			args:     []string{"session", "--help"},
			contains: []string{"set", "clear", "show"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newCmd(home, binary, tt.args...).CombinedOutput()
			require.NoError(t, err)
			for _, expected := range tt.contains {
				assert.Contains(t, string(output), expected)
			}
		})
	}
}

func TestCLI_Version(t *testing.T) {
	binary := buildTestBinary(t)
	output, err := newCmd(tempHome(t), binary, "--version").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "run-countdown dev")
	assert.Contains(t, string(output), "commit: none")
}

func TestCLI_SessionSetShowClear(t *testing.T) {
	binary := buildTestBinary(t)
	home := tempHome(t)

	output, err := newCmd(home, binary, "session", "show").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "No deadline set")

	output, err = newCmd(home, binary, "session", "set",
		"--deadline", "2030-01-02T03:04:05Z", "--start", "2030-01-01T03:04:05Z", "--name", "exam").CombinedOutput()
	require.NoError(t, err, "set failed: %s", string(output))
	assert.Contains(t, string(output), "Deadline set to 2030-01-02T03:04:05Z")

	output, err = newCmd(home, binary, "session", "show").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "name: exam")
	assert.Contains(t, string(output), "deadline: 2030-01-02T03:04:05Z")
	assert.Contains(t, string(output), "start: 2030-01-01T03:04:05Z")

	_, err = os.Stat(filepath.Join(home, ".run-countdown", "session.json"))
	require.NoError(t, err)

	output, err = newCmd(home, binary, "session", "clear").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "Deadline cleared")

	output, err = newCmd(home, binary, "session", "show").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "No deadline set")
}

func TestCLI_ErrorHandling(t *testing.T) {
	binary := buildTestBinary(t)
	home := tempHome(t)

	tests := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{
			name:     "session set with unparseable deadline",
			args:     []string{"session", "set", "--deadline", "not a date"},
			errorMsg: "Invalid deadline",
		},
		{
			name:     "session set without deadline",
			args:     []string{"session", "set"},
			errorMsg: "required flag(s) \"deadline\" not set",
		},
		{
			name:     "run without any deadline",
			args:     []string{"run"},
			errorMsg: "no deadline",
		},
		{
			name:     "run with bad on-expire",
			args:     []string{"run", "--in", "1s", "--on-expire", "explode"},
			errorMsg: "Invalid --on-expire",
		},
		{
			name:     "run with conflicting sources",
			args:     []string{"run", "--in", "1s", "--deadline", "2030-01-01T00:00:00Z"},
			errorMsg: "none of the others can be",
		},
		{
			name:     "invalid command",
			args:     []string{"invalid-command"},
			errorMsg: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newCmd(home, binary, tt.args...).CombinedOutput()
			require.Error(t, err)
			assert.Contains(t, string(output), tt.errorMsg)
		})
	}
}

func TestCLI_StatusJSON(t *testing.T) {
	binary := buildTestBinary(t)
	home := tempHome(t)
	dir := t.TempDir()

	now := time.Now().UTC()
	past := now.Add(-time.Hour).Format(time.RFC3339)
	writeDefinition(t, dir, "late.countdown.yaml", fmt.Sprintf("deadline: %q\n", past))
	writeDefinition(t, dir, "exam.countdown.json", fmt.Sprintf(`{"name": "Exam", "deadline": %q, "start": %q}`,
		now.Add(time.Hour).Format(time.RFC3339), now.Add(-2*time.Hour).Format(time.RFC3339)))
	writeDefinition(t, dir, "notes.json", `{"deadline": "ignored"}`)

	cmd := newCmd(home, binary, "status", "--json", dir)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	require.NoError(t, cmd.Run())

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &entries), "Output should be valid JSON: %s", stdout.String())
	require.Len(t, entries, 2)

	// Directory results are sorted by path.
	exam, late := entries[0], entries[1]
	assert.Equal(t, "Exam", exam["name"])
	assert.Equal(t, true, exam["has_time"])
	assert.InDelta(t, 66.7, exam["percent"], 1.0)
	assert.Equal(t, "warning", exam["severity"])

	assert.Equal(t, "late", late["name"])
	assert.Equal(t, false, late["has_time"])
	assert.Equal(t, "info", late["severity"])
	assert.Equal(t, 0.0, late["percent"])
	assert.Contains(t, late["remaining"], "-60:0")
}

func TestCLI_StatusSession(t *testing.T) {
	binary := buildTestBinary(t)
	home := tempHome(t)

	output, err := newCmd(home, binary, "session", "set", "--deadline", "2999-01-01T00:00:00Z").CombinedOutput()
	require.NoError(t, err, "set failed: %s", string(output))

	output, err = newCmd(home, binary, "status").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "NAME")
	assert.Contains(t, string(output), "session")
}

func TestCLI_RunExitsOnExpire(t *testing.T) {
	binary := buildTestBinary(t)
	home := tempHome(t)

	t.Run("in", func(t *testing.T) {
		cmd := newCmd(home, binary, "run", "--in", "1s", "--on-expire", "exit")
		output, err := cmd.CombinedOutput()
		require.NoError(t, err, "Output: %s", string(output))
		assert.Contains(t, string(output), "00:00")
	})

	t.Run("definition file", func(t *testing.T) {
		dir := t.TempDir()
		past := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
		path := writeDefinition(t, dir, "done.countdown.yaml",
			fmt.Sprintf("deadline: %q\non_expire: exit\n", past))

		output, err := newCmd(home, binary, "run", "--file", path).CombinedOutput()
		require.NoError(t, err, "Output: %s", string(output))
		assert.Contains(t, string(output), "00:00")
	})
}
