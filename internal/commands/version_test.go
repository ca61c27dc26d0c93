/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/devtools-rdp/internal/version"
)

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd, err := NewVersionCommand(logr.Discard())
	require.NoError(t, err)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var printed version.VersionOutput
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &printed))
	assert.Equal(t, version.Version().Version, printed.Version)
}

func TestVersionCommandRejectsArgs(t *testing.T) {
	t.Parallel()

	cmd, err := NewVersionCommand(logr.Discard())
	require.NoError(t, err)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
