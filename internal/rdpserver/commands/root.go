/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cmds "github.com/microsoft/devtools-rdp/internal/commands"
	"github.com/microsoft/devtools-rdp/pkg/logger"
)

func NewRootCommand(logger *logger.Logger) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		SilenceErrors: true,
		Use:           "rdpserver",
		Short:         "Runs a remote debugging protocol server",
		Long: `Runs a remote debugging protocol server.

	Debugger clients connect over TCP or WebSocket, list the tabs the server exposes,
	and attach to them through tab descriptor and watcher actors.`,
		SilenceUsage:     true,
		PersistentPreRun: cmds.LogVersion(logger.Logger, "Starting RDP server..."),
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	logger.AddLevelFlag(rootCmd.PersistentFlags())

	var err error
	var cmd *cobra.Command

	if cmd, err = cmds.NewVersionCommand(logger.Logger); err != nil {
		return nil, fmt.Errorf("could not set up 'version' command: %w", err)
	} else {
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewServeCommand(logger.Logger))

	return rootCmd, nil
}
