package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, argv ...string) (*cobra.Command, []string) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(argv))
	return cmd, cmd.Flags().Args()
}

func TestOverrides(t *testing.T) {
	cmd, args := newTestCommand(t, "64", "10", "CROSS", "out", "--np", "5", "--redis-addr", "r:1", "--serial")

	got, err := overrides(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"board_size":       "64",
		"iterations":       "10",
		"init_pattern":     "CROSS",
		"output_directory": "out",
		"processes":        "5",
		"serial":           "true",
		"redis":            map[string]any{"addr": "r:1"},
	}, got)
}

func TestOverrides_LeavesDefaultsOut(t *testing.T) {
	cmd, args := newTestCommand(t)
	got, err := overrides(cmd, args)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOverrides_TooManyArgs(t *testing.T) {
	cmd, args := newTestCommand(t, "1", "2", "3", "4", "5")
	_, err := overrides(cmd, args)
	assert.Error(t, err)
}

func TestForwarded(t *testing.T) {
	cmd, args := newTestCommand(t, "64", "10", "LINE", "--np", "3", "--strategy", "sync")
	assert.Equal(t, []string{"64", "10", "LINE", "--strategy=sync"}, forwarded(cmd, args))
}

func TestSet_Nested(t *testing.T) {
	m := map[string]any{}
	set(m, "redis.addr", "a")
	set(m, "redis.db", "2")
	set(m, "iterations", "3")
	assert.Equal(t, map[string]any{
		"redis":      map[string]any{"addr": "a", "db": "2"},
		"iterations": "3",
	}, m)
}
