/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
)

// ActorName identifies an actor within a Registry.
// A name is a lookup key, not a handle: the actor it refers to may have been unregistered.
type ActorName string

// MessageStatus tells a dispatcher whether an actor understood a message.
type MessageStatus int

const (
	// Processed means the actor recognized the message (a reply may or may not have been written).
	Processed MessageStatus = iota
	// Ignored means the actor does not handle the message.
	Ignored
)

// String returns a human-readable representation of the status.
func (s MessageStatus) String() string {
	switch s {
	case Processed:
		return "processed"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Message is a decoded client packet.
type Message struct {
	// To is the name of the addressed actor.
	To ActorName

	// Type is the packet "type" field.
	Type string

	// Body holds every top-level field of the packet, including "to" and "type".
	Body map[string]json.RawMessage
}

// ParseMessage decodes a raw client packet.
// The packet must be a JSON object with non-empty "to" and "type" string fields.
func ParseMessage(packet []byte) (Message, error) {
	var body map[string]json.RawMessage
	if unmarshalErr := json.Unmarshal(packet, &body); unmarshalErr != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedPacket, unmarshalErr)
	}
	if body == nil {
		return Message{}, fmt.Errorf("%w: packet is not a JSON object", ErrMalformedPacket)
	}

	msg := Message{Body: body}

	to, found, toErr := stringField(body, "to")
	if toErr != nil {
		return Message{}, toErr
	}
	if !found || to == "" {
		return Message{}, ErrMissingActorName
	}
	msg.To = ActorName(to)

	msgType, found, typeErr := stringField(body, "type")
	if typeErr != nil {
		return msg, typeErr
	}
	if !found || msgType == "" {
		return msg, ErrMissingMessageType
	}
	msg.Type = msgType

	return msg, nil
}

// Has reports whether the packet carries the given top-level field.
func (m Message) Has(field string) bool {
	_, found := m.Body[field]
	return found
}

// StringField returns the value of a string field, if present and a string.
func (m Message) StringField(field string) (string, bool) {
	val, found, err := stringField(m.Body, field)
	if err != nil || !found {
		return "", false
	}
	return val, true
}

func stringField(body map[string]json.RawMessage, field string) (string, bool, error) {
	raw, found := body[field]
	if !found {
		return "", false, nil
	}

	var val string
	if err := json.Unmarshal(raw, &val); err != nil {
		return "", true, fmt.Errorf("%w: field '%s' must be a string", ErrMalformedPacket, field)
	}
	return val, true, nil
}

// PacketWriter is the reply channel of the connection that delivered a message.
type PacketWriter interface {
	// WritePacket serializes v as JSON and sends it as a single packet.
	WritePacket(v any) error
}

// Actor is a named, addressable protocol object.
type Actor interface {
	// Name returns the name the actor was registered under. It never changes.
	Name() ActorName

	// HandleMessage processes one message addressed to the actor and writes zero or one reply to out.
	// It returns Ignored if the message type is not handled by the actor.
	HandleMessage(registry *Registry, msg Message, out PacketWriter) (MessageStatus, error)
}

// writeReply sends a reply packet. Delivery failures are logged and otherwise dropped:
// the request counts as complete whether or not the client received the reply.
func writeReply(log logr.Logger, out PacketWriter, from ActorName, packet any) {
	if writeErr := out.WritePacket(packet); writeErr != nil {
		log.Error(writeErr, "Could not write reply packet", "Actor", from)
	}
}
