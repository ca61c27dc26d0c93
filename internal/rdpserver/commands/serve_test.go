/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/devtools-rdp/internal/config"
	"github.com/microsoft/devtools-rdp/pkg/logger"
	"github.com/microsoft/devtools-rdp/pkg/testutil"
)

func executeRoot(t *testing.T, ctx context.Context, args ...string) error {
	root, err := NewRootCommand(logger.New(t.Name()))
	require.NoError(t, err)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func TestServeRejectsInvalidAddress(t *testing.T) {
	t.Parallel()
	ctx, cancel := testutil.GetTestContext(t, 20*time.Second)
	defer cancel()

	err := executeRoot(t, ctx, "serve", "--address", "not-an-address", "--http-address", "")
	assert.ErrorIs(t, err, config.ErrInvalidAddress)
}

func TestServeRejectsInvalidTabsFile(t *testing.T) {
	t.Parallel()
	ctx, cancel := testutil.GetTestContext(t, 20*time.Second)
	defer cancel()

	tabsFile := filepath.Join(t.TempDir(), "tabs.yaml")
	require.NoError(t, os.WriteFile(tabsFile, []byte("tabs: []\n"), 0o600))

	err := executeRoot(t, ctx, "serve", "--address", "127.0.0.1:0", "--http-address", "", "--tabs-file", tabsFile)
	assert.ErrorIs(t, err, config.ErrInvalidTabs)
}

func TestServeStopsWhenContextIsCancelled(t *testing.T) {
	t.Parallel()
	testCtx, cancelTest := testutil.GetTestContext(t, 20*time.Second)
	defer cancelTest()

	serveCtx, cancelServe := context.WithCancel(testCtx)
	done := make(chan error, 1)
	go func() {
		done <- executeRoot(t, serveCtx, "serve", "--address", "127.0.0.1:0", "--http-address", "127.0.0.1:0")
	}()

	time.Sleep(200 * time.Millisecond)
	cancelServe()

	select {
	case err := <-done:
		// Cancellation may land before the listeners are bound; either way the command must return.
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-testCtx.Done():
		t.Fatal("serve command did not return after its context was cancelled")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.New(t.Name()))
	require.NoError(t, err)

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "version"}, names)
}
