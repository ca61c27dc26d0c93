/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package devtools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"sync"

	"github.com/go-logr/logr"

	"github.com/microsoft/devtools-rdp/internal/rdp"
	"github.com/microsoft/devtools-rdp/pkg/syncmap"
)

// TabSeed describes a tab that every new session starts with.
type TabSeed struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Server accepts debugging clients and runs one Session per connection.
type Server struct {
	log      logr.Logger
	tabs     []TabSeed
	sessions syncmap.Map[string, *Session]
}

func NewServer(log logr.Logger, tabs []TabSeed) *Server {
	return &Server{
		log:  log,
		tabs: slices.Clone(tabs),
	}
}

// Tabs returns the tabs each new session is created with.
func (s *Server) Tabs() []TabSeed {
	return slices.Clone(s.tabs)
}

// Sessions returns a snapshot of the live sessions, oldest first.
func (s *Server) Sessions() []SessionInfo {
	var infos []SessionInfo
	for _, session := range s.sessions.Values() {
		infos = append(infos, session.Info())
	}
	slices.SortFunc(infos, func(a, b SessionInfo) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return infos
}

// Session returns the live session with the given ID.
func (s *Server) Session(id string) (*Session, bool) {
	return s.sessions.Load(id)
}

// Serve accepts TCP connections until the context is cancelled or the listener fails.
// It returns after every session started by it has ended.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	s.log.Info("Accepting debugger connections", "Address", listener.Addr().String())

	for {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil || errors.Is(acceptErr, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept debugger connection: %w", acceptErr)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			remote := conn.RemoteAddr().String()
			if serveErr := s.ServeStream(ctx, rdp.NewTCPStream(conn)); serveErr != nil {
				s.log.Error(serveErr, "Debugging session ended with an error", "Remote", remote)
			}
		}()
	}
}

// ServeStream runs a session over an established packet stream and blocks until the client
// disconnects or the context is cancelled. The stream is closed when ServeStream returns.
func (s *Server) ServeStream(ctx context.Context, stream rdp.PacketStream) error {
	session, sessionErr := newSession(s.log, stream, s.tabs)
	if sessionErr != nil {
		_ = stream.Close()
		return sessionErr
	}

	s.sessions.Store(session.id, session)
	defer func() {
		s.sessions.Delete(session.id)
		session.close()
		session.log.V(1).Info("Session ended")
	}()

	stop := context.AfterFunc(ctx, session.close)
	defer stop()

	session.log.V(1).Info("Session started", "Tabs", len(s.tabs))

	if err := stream.WritePacket(session.root.Greeting()); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("could not send greeting: %w", err)
	}

	for {
		packet, readErr := stream.ReadPacket()
		if readErr != nil {
			if ctx.Err() != nil || isEndOfSession(readErr) {
				return nil
			}
			if rdp.IsProtocolError(readErr) {
				session.reply(unknownErrorReply(session.root.Name(), readErr))
			}
			return fmt.Errorf("could not read packet: %w", readErr)
		}

		session.dispatch(packet)
	}
}

func isEndOfSession(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, rdp.ErrStreamClosed)
}
