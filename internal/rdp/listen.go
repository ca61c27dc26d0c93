/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package rdp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"

	"github.com/microsoft/devtools-rdp/pkg/resiliency"
)

// ListenTimeout bounds how long Listen keeps retrying a busy address.
const ListenTimeout = 10 * time.Second

// Listen binds a TCP listener, retrying with exponential back-off while the address is in use
// (typically a previous server instance that has not released the port yet).
func Listen(ctx context.Context, address string, log logr.Logger) (net.Listener, error) {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMaxInterval(1*time.Second),
		backoff.WithMaxElapsedTime(ListenTimeout),
	)

	var lc net.ListenConfig
	listener, listenErr := resiliency.RetryGet(ctx, b, func() (net.Listener, error) {
		l, err := lc.Listen(ctx, "tcp", address)
		if err != nil {
			log.V(1).Info("Could not bind listener, will retry", "Address", address, "Error", err.Error())
		}
		return l, err
	})
	if listenErr != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, listenErr)
	}

	return listener, nil
}
