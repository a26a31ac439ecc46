package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "arbor version "))
}

func TestReplayCommand(t *testing.T) {
	out, err := execute(t, "", "replay", "testdata/scenario.yaml", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "select 2")
	assert.Contains(t, out, "└── 2\n")
	assert.Contains(t, out, "scenario: 6 of 6 steps applied, active 4, next id 5")
	assert.Contains(t, out, "expectations met")
}

func TestReplayCommand_JSON(t *testing.T) {
	out, err := execute(t, "", "replay", "testdata/scenario.yaml", "--json")
	require.NoError(t, err)

	var report script.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Results, 6)
	assert.Equal(t, "4", report.Final.ActiveNodeID)
}

func TestReplayCommand_ExpectationFailed(t *testing.T) {
	out, err := execute(t, "", "replay", "testdata/broken.yaml", "--json=false", "--verbose=false")
	assert.ErrorIs(t, err, script.ErrExpectationFailed)
	assert.Contains(t, out, "broken: 1 of 1 steps applied")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "", "graph", "testdata/broken.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "n1 --> n2")
	assert.Contains(t, out, "class n2 current;")
}

func TestRunCommand_Piped(t *testing.T) {
	out, err := execute(t, "add\nadd\nundo\nstatus\nquit\n", "run", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "add: active 3, 3 nodes, next id 4")
	assert.Contains(t, out, "undo: active 2, 2 nodes, next id 3")
	assert.Contains(t, out, "history: entry 2 of 3")
	assert.NotContains(t, out, "arbor>")
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := execute(t, "add\n", "run", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"command":"add"`)
	assert.Contains(t, out, `"active_node_id":"2"`)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "", "version", "--log-level", "loud")
	assert.NoError(t, err, "version does not load configuration")

	_, err = execute(t, "", "graph", "--log-level", "loud")
	assert.Error(t, err)
	_, _ = execute(t, "", "graph", "--log-level", "info")
}
