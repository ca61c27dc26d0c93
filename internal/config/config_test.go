/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/devtools-rdp/internal/devtools"
)

func TestParseTabs(t *testing.T) {
	t.Parallel()

	tabs, err := ParseTabs([]byte(`
tabs:
  - title: Example
    url: https://example.test/
  - url: https://untitled.test/
`))
	require.NoError(t, err)
	assert.Equal(t, []devtools.TabSeed{
		{Title: "Example", URL: "https://example.test/"},
		{Title: "https://untitled.test/", URL: "https://untitled.test/"},
	}, tabs)
}

func TestParseTabs_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		content     string
	}{
		{"not yaml", "tabs: [unterminated"},
		{"no tabs", "tabs: []"},
		{"empty file", ""},
		{"missing url", "tabs:\n  - title: Nowhere\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()
			_, err := ParseTabs([]byte(tc.content))
			assert.ErrorIs(t, err, ErrInvalidTabs)
		})
	}
}

func TestConfigTabs(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	tabs, err := cfg.Tabs()
	require.NoError(t, err)
	assert.Equal(t, []devtools.TabSeed{{Title: "New Tab", URL: "about:blank"}}, tabs)

	tabsFile := filepath.Join(t.TempDir(), "tabs.yaml")
	require.NoError(t, os.WriteFile(tabsFile, []byte("tabs:\n  - title: One\n    url: https://one.test/\n"), 0o600))
	cfg.TabsFile = tabsFile
	tabs, err = cfg.Tabs()
	require.NoError(t, err)
	assert.Equal(t, []devtools.TabSeed{{Title: "One", URL: "https://one.test/"}}, tabs)

	cfg.TabsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Tabs()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		cfg         Config
		valid       bool
	}{
		{"defaults", Config{Address: DefaultAddress, HTTPAddress: DefaultHTTPAddress}, true},
		{"http disabled", Config{Address: "localhost:0"}, true},
		{"any interface", Config{Address: ":6080"}, true},
		{"ipv6", Config{Address: "[::1]:6080"}, true},
		{"missing port", Config{Address: "127.0.0.1"}, false},
		{"bad port", Config{Address: "127.0.0.1:http"}, false},
		{"port out of range", Config{Address: "127.0.0.1:70000"}, false},
		{"host name", Config{Address: "example.test:6080"}, false},
		{"same address twice", Config{Address: DefaultAddress, HTTPAddress: DefaultAddress}, false},
		{"two ephemeral ports", Config{Address: "127.0.0.1:0", HTTPAddress: "127.0.0.1:0"}, true},
	}

	for _, tc := range testCases {
		err := tc.cfg.Validate()
		if tc.valid {
			assert.NoError(t, err, tc.description)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAddress, tc.description)
		}
	}
}

// Not parallel: flag defaults are read from the process environment.
func TestAddFlags_EnvironmentDefaults(t *testing.T) {
	t.Setenv(RDP_ADDRESS, "127.0.0.1:7000")
	t.Setenv(RDP_HTTP_ADDRESS, "")
	t.Setenv(RDP_TABS_FILE, "/etc/rdp/tabs.yaml")

	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "127.0.0.1:7000", cfg.Address)
	assert.Equal(t, "", cfg.HTTPAddress)
	assert.Equal(t, "/etc/rdp/tabs.yaml", cfg.TabsFile)

	require.NoError(t, fs.Parse([]string{"--address", "127.0.0.1:7100"}))
	assert.Equal(t, "127.0.0.1:7100", cfg.Address)
}
