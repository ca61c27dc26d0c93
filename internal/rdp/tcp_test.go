/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package rdp

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/devtools-rdp/pkg/testutil"
)

func TestTCPStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := testutil.GetTestContext(t, 5*time.Second)
	defer cancel()

	listener, listenErr := Listen(ctx, "127.0.0.1:0", logr.Discard())
	require.NoError(t, listenErr)
	defer listener.Close()

	var serverConn net.Conn
	var acceptErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		serverConn, acceptErr = listener.Accept()
	}()

	client, dialErr := DialTCP(ctx, listener.Addr().String())
	require.NoError(t, dialErr)
	defer client.Close()

	wg.Wait()
	require.NoError(t, acceptErr)
	server := NewTCPStream(serverConn)
	defer server.Close()

	t.Run("client to server", func(t *testing.T) {
		writeErr := client.WritePacket(map[string]string{"to": "root", "type": "listTabs"})
		require.NoError(t, writeErr)

		packet, readErr := server.ReadPacket()
		require.NoError(t, readErr)
		assert.JSONEq(t, `{"to":"root","type":"listTabs"}`, string(packet))
	})

	t.Run("server to client, several packets", func(t *testing.T) {
		for i := range 3 {
			require.NoError(t, server.WritePacket(map[string]int{"seq": i}))
		}
		for i := range 3 {
			packet, readErr := client.ReadPacket()
			require.NoError(t, readErr)

			var decoded map[string]int
			require.NoError(t, json.Unmarshal(packet, &decoded))
			assert.Equal(t, i, decoded["seq"])
		}
	})
}

func readFromRaw(t *testing.T, raw string) (json.RawMessage, error) {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	stream := NewTCPStream(serverConn)
	defer stream.Close()

	go func() {
		_, _ = clientConn.Write([]byte(raw))
		_ = clientConn.Close()
	}()

	return stream.ReadPacket()
}

func TestTCPStream_Framing(t *testing.T) {
	t.Parallel()

	packet, readErr := readFromRaw(t, `26:{"to":"root","type":"abc"}`)
	require.NoError(t, readErr)
	assert.Equal(t, `{"to":"root","type":"abc"}`, string(packet))
}

func TestTCPStream_FramingErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		raw         string
		expected    error
	}{
		{"bulk packet", "bulk root stream 4:abcd", ErrBulkPacketUnsupported},
		{"non-numeric length", "abc:{}", ErrInvalidPacketHeader},
		{"oversized packet", "999999999999:{}", ErrPacketTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()
			_, readErr := readFromRaw(t, tc.raw)
			assert.ErrorIs(t, readErr, tc.expected)
			assert.True(t, IsProtocolError(readErr))
		})
	}
}

func TestTCPStream_EOF(t *testing.T) {
	t.Parallel()

	_, readErr := readFromRaw(t, "")
	assert.ErrorIs(t, readErr, io.EOF)

	_, readErr = readFromRaw(t, "10:{}")
	assert.Error(t, readErr)
	assert.False(t, IsProtocolError(readErr))
}

func TestTCPStream_Closed(t *testing.T) {
	t.Parallel()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	stream := NewTCPStream(serverConn)
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close(), "closing twice is allowed")

	_, readErr := stream.ReadPacket()
	assert.True(t, errors.Is(readErr, ErrStreamClosed))
	assert.ErrorIs(t, stream.WritePacket(map[string]string{}), ErrStreamClosed)
}
