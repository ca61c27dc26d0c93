/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package devtools

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/microsoft/devtools-rdp/internal/actors"
	"github.com/microsoft/devtools-rdp/internal/rdp"
	"github.com/microsoft/devtools-rdp/pkg/resiliency"
)

// Session is a single client connection together with the actors it can address.
type Session struct {
	id        string
	startedAt time.Time
	log       logr.Logger
	stream    rdp.PacketStream
	registry  *actors.Registry
	root      *actors.RootActor

	closeOnce sync.Once
}

// SessionInfo describes a live session.
type SessionInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Actors    int       `json:"actors"`
	Tabs      int       `json:"tabs"`
}

func newSession(log logr.Logger, stream rdp.PacketStream, tabs []TabSeed) (*Session, error) {
	id := uuid.NewString()
	log = log.WithValues("Session", id)

	registry := actors.NewRegistry(log)
	root := actors.NewRootActor()
	if err := registry.Register(root); err != nil {
		return nil, fmt.Errorf("could not register the root actor: %w", err)
	}

	for i, seed := range tabs {
		bc := actors.NewBrowsingContext(
			registry,
			actors.BrowsingContextID(i+1),
			actors.PipelineID(i+1),
			seed.Title,
			seed.URL,
		)
		if err := registry.Register(bc); err != nil {
			return nil, fmt.Errorf("could not register browsing context for tab %d: %w", i, err)
		}
		if _, err := actors.NewTabDescriptor(registry, bc.Name()); err != nil {
			return nil, fmt.Errorf("could not create tab descriptor for tab %d: %w", i, err)
		}
	}

	return &Session{
		id:        id,
		startedAt: time.Now(),
		log:       log,
		stream:    stream,
		registry:  registry,
		root:      root,
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

// Registry returns the actors addressable in this session.
func (s *Session) Registry() *actors.Registry {
	return s.registry
}

func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.id,
		StartedAt: s.startedAt,
		Actors:    s.registry.Len(),
		Tabs:      len(s.root.Tabs()),
	}
}

// Routes a single packet to its actor and reports any failure back to the client.
func (s *Session) dispatch(packet json.RawMessage) {
	msg, parseErr := actors.ParseMessage(packet)
	switch {
	case errors.Is(parseErr, actors.ErrMissingActorName):
		s.reply(missingParameterReply(actors.RootActorName, "to"))
		return
	case errors.Is(parseErr, actors.ErrMissingMessageType):
		s.reply(missingParameterReply(msg.To, "type"))
		return
	case actors.IsPacketError(parseErr):
		s.log.V(1).Info("Received malformed packet", "Error", parseErr.Error())
		s.reply(unknownErrorReply(actors.RootActorName, parseErr))
		return
	case parseErr != nil:
		s.log.Error(parseErr, "Could not decode packet")
		s.reply(unknownErrorReply(actors.RootActorName, parseErr))
		return
	}

	actor, found := s.registry.Lookup(msg.To)
	if !found {
		s.reply(noSuchActorReply(msg.To))
		return
	}

	s.log.V(1).Info("Dispatching message", "Actor", msg.To, "Type", msg.Type)
	status, handleErr := s.handle(actor, msg)
	switch {
	case actors.IsInternalError(handleErr):
		s.log.Error(handleErr, "Actor graph is inconsistent", "Actor", msg.To, "Type", msg.Type, "Actors", s.registry.Names())
		s.reply(unknownErrorReply(msg.To, handleErr))
	case handleErr != nil:
		s.log.Error(handleErr, "Actor failed to handle message", "Actor", msg.To, "Type", msg.Type)
		s.reply(unknownErrorReply(msg.To, handleErr))
	case status == actors.Ignored:
		s.reply(unrecognizedPacketTypeReply(msg.To, msg.Type))
	}
}

func (s *Session) handle(actor actors.Actor, msg actors.Message) (status actors.MessageStatus, err error) {
	defer func() {
		if panicErr := resiliency.MakePanicError(recover(), s.log); panicErr != nil {
			status = actors.Processed
			err = panicErr
		}
	}()

	return actor.HandleMessage(s.registry, msg, s.stream)
}

func (s *Session) reply(packet ErrorReply) {
	if err := s.stream.WritePacket(packet); err != nil {
		s.log.Error(err, "Could not write error reply", "Error", packet.Error)
	}
}

// Closes every tab, drops all actors and closes the underlying stream. Safe to call more than once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		for _, td := range actors.FindAll[*actors.TabDescriptorActor](s.registry) {
			td.Close(s.registry)
		}
		s.registry.Drain()
		if err := s.stream.Close(); err != nil {
			s.log.V(1).Info("Error closing session stream", "Error", err.Error())
		}
	})
}
