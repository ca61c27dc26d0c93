/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package rdp moves remote debugging protocol packets over TCP and WebSocket connections.
package rdp

import (
	"encoding/json"
	"errors"
)

// MaxPacketSize bounds the size of a single incoming JSON packet.
const MaxPacketSize = 64 * 1024 * 1024

var (
	// ErrStreamClosed is returned when using a stream after Close.
	ErrStreamClosed = errors.New("packet stream is closed")

	// ErrBulkPacketUnsupported is returned when the peer sends a bulk (binary) packet.
	ErrBulkPacketUnsupported = errors.New("bulk packets are not supported")

	// ErrInvalidPacketHeader is returned when a TCP packet does not start with "<length>:".
	ErrInvalidPacketHeader = errors.New("invalid packet header")

	// ErrPacketTooLarge is returned when a packet exceeds MaxPacketSize.
	ErrPacketTooLarge = errors.New("packet too large")
)

// IsProtocolError returns true if the error means the peer does not speak the framing protocol.
// The connection cannot be resynchronized after such an error.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrBulkPacketUnsupported) ||
		errors.Is(err, ErrInvalidPacketHeader) ||
		errors.Is(err, ErrPacketTooLarge)
}

// PacketStream sends and receives JSON packets over one client connection.
// ReadPacket must only be called from one goroutine at a time; WritePacket is safe for concurrent use.
type PacketStream interface {
	// ReadPacket blocks until the next complete packet arrives and returns its JSON bytes.
	ReadPacket() (json.RawMessage, error)

	// WritePacket serializes v as JSON and sends it as one packet.
	WritePacket(v any) error

	// Close closes the underlying connection. Blocked reads and writes return with an error.
	Close() error
}
