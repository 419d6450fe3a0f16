package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history", historyCmd.Use)
}

func TestHistoryList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No analyses recorded yet")
}

func TestHistoryList_ShowsRecords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	seedHistory(t, "req-1")
	seedHistory(t, "req-2")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "req-1")
	assert.Contains(t, buf.String(), "req-2")
	assert.Contains(t, buf.String(), "3/3 sources")
}

func TestHistoryList_Disabled(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	historyStore = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestHistoryShow_DisplaysRecord(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	seedHistory(t, "req-1")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "show", "req-1"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Analysis req-1")
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "[ml]")
}

func TestHistoryShow_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history", "show", "req-404"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "req-404")
}
