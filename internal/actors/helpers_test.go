/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

// packetRecorder is a PacketWriter that keeps every packet it was asked to write.
type packetRecorder struct {
	mu       sync.Mutex
	packets  []json.RawMessage
	writeErr error
}

func (p *packetRecorder) WritePacket(v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeErr != nil {
		return p.writeErr
	}

	data, marshalErr := json.Marshal(v)
	if marshalErr != nil {
		return marshalErr
	}
	p.packets = append(p.packets, data)
	return nil
}

func (p *packetRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.packets)
}

// last decodes the most recent packet into a generic map.
func (p *packetRecorder) last(t *testing.T) map[string]any {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	require.NotEmpty(t, p.packets, "no packet was written")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(p.packets[len(p.packets)-1], &decoded))
	return decoded
}

// newTestTab builds a registry holding a root actor, one browsing context and its tab descriptor.
func newTestTab(t *testing.T, title string, url string) (*Registry, *BrowsingContextActor, *TabDescriptorActor) {
	t.Helper()

	registry := NewRegistry(logr.Discard())
	require.NoError(t, registry.Register(NewRootActor()))

	bc := NewBrowsingContext(registry, 3, 11, title, url)
	require.NoError(t, registry.Register(bc))

	td, tdErr := NewTabDescriptor(registry, bc.Name())
	require.NoError(t, tdErr)

	return registry, bc, td
}

func newRequest(t *testing.T, to ActorName, msgType string, fields map[string]any) Message {
	t.Helper()

	packet := map[string]any{"to": to, "type": msgType}
	for k, v := range fields {
		packet[k] = v
	}
	data, marshalErr := json.Marshal(packet)
	require.NoError(t, marshalErr)

	msg, parseErr := ParseMessage(data)
	require.NoError(t, parseErr)
	return msg
}

// send delivers a message to the named actor the way a dispatcher would.
func send(t *testing.T, registry *Registry, msg Message, out PacketWriter) MessageStatus {
	t.Helper()

	actor, found := registry.Lookup(msg.To)
	require.True(t, found, "actor '%s' is not registered", msg.To)

	status, handleErr := actor.HandleMessage(registry, msg, out)
	require.NoError(t, handleErr)
	return status
}
