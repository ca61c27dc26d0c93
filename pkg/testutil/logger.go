/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package testutil

import (
	"testing"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"

	"github.com/microsoft/devtools-rdp/pkg/logger"
)

// NewLogForTesting returns a console logger that only shows errors, unless the test runs with -v.
func NewLogForTesting(name string) logr.Logger {
	log := logger.New(name)
	log.SetLevel(zapcore.ErrorLevel)
	if testing.Verbose() {
		log.SetLevel(zapcore.DebugLevel)
	}
	return log.Logger.WithValues("test", true)
}
