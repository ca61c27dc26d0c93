/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdutil "github.com/microsoft/devtools-rdp/internal/commands"
	"github.com/microsoft/devtools-rdp/internal/rdpserver/commands"
	"github.com/microsoft/devtools-rdp/pkg/logger"
	"github.com/microsoft/devtools-rdp/pkg/resiliency"
)

const (
	errCommandError = 1
	errSetup        = 2
	errPanic        = 3
)

func main() {
	log := logger.New("rdpserver").WithName("rdpserver")
	defer func() {
		panicErr := resiliency.MakePanicError(recover(), log.Logger)
		if panicErr != nil {
			_, _ = os.Stderr.Write(cmdutil.WithNewline([]byte(panicErr.Error())))
			log.Flush()
			os.Exit(errPanic)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := commands.NewRootCommand(log)
	if err != nil {
		cmdutil.ErrorExit(log, err, errSetup)
	}

	err = root.ExecuteContext(ctx)
	if err != nil {
		stop()
		cmdutil.ErrorExit(log, err, errCommandError)
	} else {
		log.Flush()
	}
}
