/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package commands holds helpers shared by the command-line programs.
package commands

import (
	"os"
	"runtime"

	"github.com/microsoft/devtools-rdp/pkg/logger"
)

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func WithNewline(b []byte) []byte {
	if IsWindows() {
		b = append(b, '\r')
	}
	b = append(b, '\n')
	return b
}

// ErrorExit reports err on stderr and in the log, flushes the log, and exits with the given code.
func ErrorExit(log *logger.Logger, err error, exitCode int) {
	_, _ = os.Stderr.Write(WithNewline([]byte(err.Error())))
	log.Error(err, "Exiting with an error", "ExitCode", exitCode)
	log.Flush()
	os.Exit(exitCode)
}
