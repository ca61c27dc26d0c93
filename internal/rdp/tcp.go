/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package rdp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
)

const bulkPrefix = "bulk "

// tcpStream implements PacketStream with the "<decimal length>:<json>" framing.
type tcpStream struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	// writeMu serializes packet writes
	writeMu sync.Mutex

	closed bool
	mu     sync.Mutex
}

// NewTCPStream creates a PacketStream backed by a stream connection.
func NewTCPStream(conn net.Conn) PacketStream {
	return &tcpStream{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// DialTCP connects to an RDP server and returns a PacketStream.
func DialTCP(ctx context.Context, address string) (PacketStream, error) {
	var d net.Dialer
	conn, dialErr := d.DialContext(ctx, "tcp", address)
	if dialErr != nil {
		return nil, fmt.Errorf("failed to dial TCP %s: %w", address, dialErr)
	}

	return NewTCPStream(conn), nil
}

func (t *tcpStream) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *tcpStream) ReadPacket() (json.RawMessage, error) {
	if t.isClosed() {
		return nil, ErrStreamClosed
	}

	header, readErr := t.reader.ReadSlice(':')
	switch {
	case errors.Is(readErr, bufio.ErrBufferFull):
		return nil, fmt.Errorf("%w: no length separator found", ErrInvalidPacketHeader)
	case errors.Is(readErr, io.EOF) && len(header) == 0:
		return nil, io.EOF
	case readErr != nil:
		return nil, fmt.Errorf("failed to read packet header: %w", readErr)
	}

	header = bytes.TrimSpace(header[:len(header)-1])
	if bytes.HasPrefix(header, []byte(bulkPrefix)) {
		return nil, ErrBulkPacketUnsupported
	}

	length, parseErr := strconv.ParseUint(string(header), 10, 64)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidPacketHeader, string(header))
	}
	if length > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, length)
	}

	packet := make([]byte, length)
	if _, readErr = io.ReadFull(t.reader, packet); readErr != nil {
		return nil, fmt.Errorf("failed to read packet body: %w", readErr)
	}

	return packet, nil
}

func (t *tcpStream) WritePacket(v any) error {
	if t.isClosed() {
		return ErrStreamClosed
	}

	data, marshalErr := json.Marshal(v)
	if marshalErr != nil {
		return fmt.Errorf("failed to serialize packet: %w", marshalErr)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, writeErr := t.writer.WriteString(strconv.Itoa(len(data)) + ":"); writeErr != nil {
		return fmt.Errorf("failed to write packet header: %w", writeErr)
	}
	if _, writeErr := t.writer.Write(data); writeErr != nil {
		return fmt.Errorf("failed to write packet body: %w", writeErr)
	}

	if flushErr := t.writer.Flush(); flushErr != nil {
		return fmt.Errorf("failed to flush packet: %w", flushErr)
	}

	return nil
}

func (t *tcpStream) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	return t.conn.Close()
}

var _ PacketStream = (*tcpStream)(nil)
