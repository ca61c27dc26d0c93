/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package logger

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestStringToLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value    string
		expected zapcore.Level
		valid    bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"INFO", zapcore.InfoLevel, true},
		{"warn", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"4", zapcore.Level(-4), true},
		{"0", zapcore.InfoLevel, false},
		{"-2", zapcore.InfoLevel, false},
		{"verbose", zapcore.InfoLevel, false},
	}

	for _, tc := range testCases {
		level, err := StringToLevel(tc.value, zapcore.InfoLevel)
		if tc.valid {
			require.NoError(t, err, tc.value)
		} else {
			require.Error(t, err, tc.value)
		}
		assert.Equal(t, tc.expected, level, tc.value)
	}
}

func TestLevelFlag(t *testing.T) {
	t.Parallel()

	log := New("level-flag-test")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	log.AddLevelFlag(fs)

	require.NoError(t, fs.Parse([]string{"-v=debug"}))
	assert.True(t, log.atomicLevel.Enabled(zapcore.DebugLevel))

	levelVal, found := GetLevelFlagValue(fs)
	require.True(t, found)
	assert.Equal(t, "debug", levelVal.String())

	assert.Error(t, fs.Parse([]string{"--verbosity=loud"}))
}

// Not parallel: the diagnostics log is configured through the process environment.
func TestDiagnosticsLogFile(t *testing.T) {
	logFolder := t.TempDir()
	t.Setenv(RDP_DIAGNOSTICS_LOG_FOLDER, logFolder)
	t.Setenv(RDP_DIAGNOSTICS_LOG_LEVEL, "debug")

	log := New("diagnostics-test")
	log.Info("hello from the diagnostics test", "Answer", 42)
	log.Flush()

	expected := filepath.Join(logFolder, "diagnostics-test-"+strconv.Itoa(os.Getpid())+".log")
	content, readErr := os.ReadFile(expected)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "hello from the diagnostics test")
	assert.Contains(t, string(content), `"Answer":42`)
}

func TestDiagnosticsLogDisabledByDefault(t *testing.T) {
	t.Setenv(RDP_DIAGNOSTICS_LOG_LEVEL, "")
	require.NoError(t, os.Unsetenv(RDP_DIAGNOSTICS_LOG_LEVEL))

	_, err := GetDiagnosticsLogLevel()
	assert.ErrorIs(t, err, errDiagnosticsLogNotEnabled)
}
