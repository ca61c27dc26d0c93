/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package rdp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// wsStream implements PacketStream over a WebSocket connection.
// Each text message carries exactly one JSON packet; no length prefix is used.
type wsStream struct {
	conn  net.Conn
	rw    io.ReadWriter
	state ws.State

	writeMu sync.Mutex

	closed bool
	mu     sync.Mutex
}

// NewWebSocketStream creates a PacketStream over an upgraded WebSocket connection.
// br is the reader left over from the handshake (the second result of ws.Dial, or the reader of the
// bufio.ReadWriter returned by ws.UpgradeHTTP); it may already hold frames the peer sent right after
// the handshake. Pass nil if there is none.
// Use ws.StateServerSide for connections accepted with ws.UpgradeHTTP and ws.StateClientSide for dialed ones.
func NewWebSocketStream(conn net.Conn, br *bufio.Reader, state ws.State) PacketStream {
	var r io.Reader = conn
	if br != nil {
		r = br
	}

	// Control frame replies (pong, close) go straight to the connection.
	rw := struct {
		io.Reader
		io.Writer
	}{r, conn}

	return &wsStream{
		conn:  conn,
		rw:    rw,
		state: state,
	}
}

func (w *wsStream) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *wsStream) ReadPacket() (json.RawMessage, error) {
	if w.isClosed() {
		return nil, ErrStreamClosed
	}

	// Control frames (ping, pong, close) are handled inside ReadData.
	data, op, readErr := wsutil.ReadData(w.rw, w.state)
	var closedErr wsutil.ClosedError
	if errors.As(readErr, &closedErr) {
		return nil, io.EOF
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read WebSocket message: %w", readErr)
	}
	if op == ws.OpBinary {
		return nil, ErrBulkPacketUnsupported
	}
	if len(data) > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(data))
	}

	return data, nil
}

func (w *wsStream) WritePacket(v any) error {
	if w.isClosed() {
		return ErrStreamClosed
	}

	data, marshalErr := json.Marshal(v)
	if marshalErr != nil {
		return fmt.Errorf("failed to serialize packet: %w", marshalErr)
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if writeErr := wsutil.WriteMessage(w.conn, w.state, ws.OpText, data); writeErr != nil {
		return fmt.Errorf("failed to write WebSocket message: %w", writeErr)
	}

	return nil
}

func (w *wsStream) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	return w.conn.Close()
}

var _ PacketStream = (*wsStream)(nil)
