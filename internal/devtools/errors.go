/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package devtools

import (
	"fmt"

	"github.com/microsoft/devtools-rdp/internal/actors"
)

// Error names sent in the "error" field of protocol error packets.
const (
	ErrorMissingParameter       = "missingParameter"
	ErrorNoSuchActor            = "noSuchActor"
	ErrorUnrecognizedPacketType = "unrecognizedPacketType"
	ErrorUnknown                = "unknownError"
)

// ErrorReply is the packet sent back when a request cannot be dispatched or handled.
type ErrorReply struct {
	From    actors.ActorName `json:"from"`
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
}

func missingParameterReply(from actors.ActorName, field string) ErrorReply {
	return ErrorReply{
		From:    from,
		Error:   ErrorMissingParameter,
		Message: fmt.Sprintf("Packet has no '%s' field", field),
	}
}

func noSuchActorReply(name actors.ActorName) ErrorReply {
	return ErrorReply{
		From:    name,
		Error:   ErrorNoSuchActor,
		Message: fmt.Sprintf("No such actor for ID: %s", name),
	}
}

func unrecognizedPacketTypeReply(name actors.ActorName, msgType string) ErrorReply {
	return ErrorReply{
		From:    name,
		Error:   ErrorUnrecognizedPacketType,
		Message: fmt.Sprintf("Actor %s does not recognize the packet type %s", name, msgType),
	}
}

func unknownErrorReply(from actors.ActorName, err error) ErrorReply {
	return ErrorReply{
		From:    from,
		Error:   ErrorUnknown,
		Message: err.Error(),
	}
}
