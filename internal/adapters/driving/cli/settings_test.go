package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
)

func TestSettingsCmd_Use(t *testing.T) {
	assert.Equal(t, "settings", settingsCmd.Use)
}

func TestSettingsList_ShowsKnownKeys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), driven.ConfigKeyBaseURL)
	assert.Contains(t, buf.String(), driven.ConfigKeyHistoryEnabled)
	assert.Contains(t, buf.String(), "(not set)")
}

func TestSettingsList_MasksAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, configStore.Set(driven.ConfigKeyAPIKey, "sk-test-1234567890"))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "sk-t...7890")
	assert.NotContains(t, buf.String(), "sk-test-1234567890")
}

func TestSettingsSetAndGet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "set", driven.ConfigKeyBaseURL, "https://api.example.com"})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"settings", "get", driven.ConfigKeyBaseURL})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "https://api.example.com")
}

func TestSettingsSet_ParsesTypes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"settings", "set", driven.ConfigKeyHistoryEnabled, "false"})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())

	value, ok := configStore.Get(driven.ConfigKeyHistoryEnabled)
	require.True(t, ok)
	assert.Equal(t, false, value)

	rootCmd.SetArgs([]string{"settings", "set", driven.ConfigKeyScoreTimeout, "45"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, 45, configStore.GetInt(driven.ConfigKeyScoreTimeout))
}

func TestSettingsGet_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "get", "nope.nothing"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("false"))
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, "hello", parseValue("hello"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-t...7890", maskAPIKey("sk-test-1234567890"))
}
