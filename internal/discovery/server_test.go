/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package discovery

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/devtools-rdp/internal/devtools"
	"github.com/microsoft/devtools-rdp/internal/rdp"
	"github.com/microsoft/devtools-rdp/pkg/testutil"
)

const defaultTestTimeout = 20 * time.Second

var exampleTabs = []devtools.TabSeed{
	{Title: "Example", URL: "https://example.test/"},
}

func newTestServer(t *testing.T) (*devtools.Server, *httptest.Server) {
	log := testutil.NewLogForTesting(t.Name())
	server := devtools.NewServer(log, exampleTabs)
	httpServer := httptest.NewServer(NewHandler(server, log))
	t.Cleanup(httpServer.Close)
	return server, httpServer
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()
	_, httpServer := newTestServer(t)

	var info VersionInfo
	getJSON(t, httpServer.URL+"/json/version", &info)
	assert.Equal(t, "browser", info.ApplicationType)
	assert.NotEmpty(t, info.Version.Version)
	assert.Equal(t, "ws://"+strings.TrimPrefix(httpServer.URL, "http://")+WebSocketPath, info.WebSocketURL)
}

func TestListEndpoint(t *testing.T) {
	t.Parallel()
	_, httpServer := newTestServer(t)

	var tabs []TabEntry
	getJSON(t, httpServer.URL+"/json/list", &tabs)
	require.Len(t, tabs, 1)
	assert.Equal(t, "Example", tabs[0].Title)
	assert.Equal(t, "https://example.test/", tabs[0].URL)
	assert.True(t, strings.HasSuffix(tabs[0].WebSocketURL, WebSocketPath))
}

func TestUnknownPathIsNotFound(t *testing.T) {
	t.Parallel()
	_, httpServer := newTestServer(t)

	resp, err := http.Get(httpServer.URL + "/json/bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dialWebSocket(t *testing.T, ctx context.Context, url string) rdp.PacketStream {
	t.Helper()
	conn, br, _, dialErr := ws.Dial(ctx, url)
	require.NoError(t, dialErr)
	// A lost frame fails the read instead of hanging the test.
	require.NoError(t, conn.SetDeadline(time.Now().Add(defaultTestTimeout)))
	return rdp.NewWebSocketStream(conn, br, ws.StateClientSide)
}

func TestWebSocketGreetingArrivesWithHandshake(t *testing.T) {
	t.Parallel()
	ctx, cancel := testutil.GetTestContext(t, defaultTestTimeout)
	defer cancel()

	_, httpServer := newTestServer(t)
	wsURL := "ws://" + strings.TrimPrefix(httpServer.URL, "http://") + WebSocketPath

	// The server greets as soon as the upgrade completes, so the greeting often shares
	// a TCP read with the handshake response.
	for i := 0; i < 10; i++ {
		client := dialWebSocket(t, ctx, wsURL)
		greeting, readErr := client.ReadPacket()
		require.NoError(t, readErr, "dial %d", i)
		assert.JSONEq(t,
			`{"from":"root","applicationType":"browser","traits":{"sources":false,"highlightable":true,"customHighlighters":true,"networkMonitor":false}}`,
			string(greeting), "dial %d", i)
		require.NoError(t, client.Close())
	}
}

func TestWebSocketSession(t *testing.T) {
	t.Parallel()
	ctx, cancel := testutil.GetTestContext(t, defaultTestTimeout)
	defer cancel()

	server, httpServer := newTestServer(t)

	wsURL := "ws://" + strings.TrimPrefix(httpServer.URL, "http://") + WebSocketPath
	client := dialWebSocket(t, ctx, wsURL)
	defer client.Close()

	greeting, readErr := client.ReadPacket()
	require.NoError(t, readErr)
	assert.Contains(t, string(greeting), `"applicationType":"browser"`)

	require.NoError(t, client.WritePacket(map[string]string{"to": "root", "type": "listTabs"}))
	reply, readErr := client.ReadPacket()
	require.NoError(t, readErr)

	var listTabs struct {
		From string           `json:"from"`
		Tabs []map[string]any `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(reply, &listTabs))
	assert.Equal(t, "root", listTabs.From)
	require.Len(t, listTabs.Tabs, 1)
	assert.Equal(t, "Example", listTabs.Tabs[0]["title"])

	var sessions []devtools.SessionInfo
	getJSON(t, httpServer.URL+"/json/sessions", &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].Tabs)

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool {
		return len(server.Sessions()) == 0
	}, 5*time.Second, 20*time.Millisecond, "session should end when the WebSocket closes")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	testCtx, cancelTest := testutil.GetTestContext(t, defaultTestTimeout)
	defer cancelTest()

	log := testutil.NewLogForTesting(t.Name())
	listener, listenErr := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, listenErr)

	serveCtx, cancelServe := context.WithCancel(testCtx)
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(serveCtx, listener, NewHandler(devtools.NewServer(log, exampleTabs), log), log)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/json/version")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancelServe()
	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-testCtx.Done():
		t.Fatal("discovery server did not stop after its context was cancelled")
	}
}
