/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"errors"
	"fmt"
)

var (
	// ErrActorNotFound is reported when a name does not resolve to a registered actor.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorKindMismatch is reported when a name resolves to an actor of an unexpected kind.
	ErrActorKindMismatch = errors.New("actor kind mismatch")

	// ErrActorAlreadyRegistered is returned when registering a name that is already taken.
	ErrActorAlreadyRegistered = errors.New("actor already registered")

	// ErrRegistryDrained is returned when registering into a registry whose session has ended.
	ErrRegistryDrained = errors.New("registry has been drained")

	// ErrMalformedPacket is returned when a client packet is not a valid JSON object.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrMissingActorName is returned when a client packet has no "to" field.
	ErrMissingActorName = errors.New("packet is missing the 'to' field")

	// ErrMissingMessageType is returned when a client packet has no "type" field.
	ErrMissingMessageType = errors.New("packet is missing the 'type' field")
)

// InternalError reports a broken invariant between actors, such as a peer name
// that should always resolve but does not. It is raised with panic, never returned
// to a client as a regular reply.
type InternalError struct {
	Name ActorName
	Err  error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal actor consistency error for '%s': %v", e.Name, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsInternalError returns true if the error (or any error it wraps) is an InternalError.
func IsInternalError(err error) bool {
	var internalErr *InternalError
	return errors.As(err, &internalErr)
}

// IsPacketError returns true if the error indicates an unusable client packet.
func IsPacketError(err error) bool {
	return errors.Is(err, ErrMalformedPacket) ||
		errors.Is(err, ErrMissingActorName) ||
		errors.Is(err, ErrMissingMessageType)
}
