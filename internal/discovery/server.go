/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package discovery exposes the debugging server over HTTP: tab and version listings
// for tools that probe before connecting, and a WebSocket endpoint that carries RDP sessions.
package discovery

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/gobwas/ws"

	"github.com/microsoft/devtools-rdp/internal/devtools"
	"github.com/microsoft/devtools-rdp/internal/rdp"
	"github.com/microsoft/devtools-rdp/internal/version"
)

const (
	WebSocketPath = "/ws"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// VersionInfo is returned by GET /json/version.
type VersionInfo struct {
	ApplicationType string                `json:"applicationType"`
	Version         version.VersionOutput `json:"version"`
	WebSocketURL    string                `json:"webSocketDebuggerUrl"`
}

// TabEntry is one element of the GET /json/list response.
type TabEntry struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	WebSocketURL string `json:"webSocketDebuggerUrl"`
}

// Handler serves the discovery endpoints for a single devtools server.
type Handler struct {
	router chi.Router
	server *devtools.Server
	log    logr.Logger
}

func NewHandler(server *devtools.Server, log logr.Logger) *Handler {
	h := &Handler{
		router: chi.NewRouter(),
		server: server,
		log:    log,
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(requestLogger(log))
	h.router.Use(middleware.Recoverer)

	h.router.Get("/json/version", h.getVersion)
	h.router.Get("/json/list", h.getTabs)
	h.router.Get("/json/sessions", h.getSessions)
	h.router.Get(WebSocketPath, h.upgrade)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, VersionInfo{
		ApplicationType: "browser",
		Version:         version.Version(),
		WebSocketURL:    webSocketURL(r),
	})
}

func (h *Handler) getTabs(w http.ResponseWriter, r *http.Request) {
	tabs := h.server.Tabs()
	entries := make([]TabEntry, 0, len(tabs))
	for _, tab := range tabs {
		entries = append(entries, TabEntry{
			Title:        tab.Title,
			URL:          tab.URL,
			WebSocketURL: webSocketURL(r),
		})
	}
	h.writeJSON(w, entries)
}

func (h *Handler) getSessions(w http.ResponseWriter, _ *http.Request) {
	sessions := h.server.Sessions()
	if sessions == nil {
		sessions = []devtools.SessionInfo{}
	}
	h.writeJSON(w, sessions)
}

// Upgrades the request to a WebSocket and runs a debugging session over it.
// The handler returns when the client disconnects or the server shuts down.
func (h *Handler) upgrade(w http.ResponseWriter, r *http.Request) {
	conn, rw, _, upgradeErr := ws.UpgradeHTTP(r, w)
	if upgradeErr != nil {
		h.log.V(1).Info("WebSocket upgrade failed", "Remote", r.RemoteAddr, "Error", upgradeErr.Error())
		return
	}

	var br *bufio.Reader
	if rw != nil {
		br = rw.Reader
	}
	stream := rdp.NewWebSocketStream(conn, br, ws.StateServerSide)
	if serveErr := h.server.ServeStream(r.Context(), stream); serveErr != nil {
		h.log.Error(serveErr, "WebSocket debugging session ended with an error", "Remote", r.RemoteAddr)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error(err, "Could not write HTTP response")
	}
}

func webSocketURL(r *http.Request) string {
	return fmt.Sprintf("ws://%s%s", r.Host, WebSocketPath)
}

// Serve runs the discovery endpoints on the listener until the context is cancelled,
// then shuts the HTTP server down gracefully.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, log logr.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- httpServer.Serve(listener)
	}()

	log.Info("Serving discovery endpoints", "Address", listener.Addr().String())

	select {
	case serveErr := <-serveErrCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("discovery server failed: %w", serveErr)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("discovery server did not shut down cleanly: %w", shutdownErr)
		}
		return nil
	}
}
