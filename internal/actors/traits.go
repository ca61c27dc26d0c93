/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

// WatcherResources lists, per resource kind, whether a watcher can forward it.
// JSON keys are part of the protocol and must not be renamed.
// Supporting a new resource kind means flipping its own flag in NewWatcherTraits and nothing else.
// The "jstracert-trace" spelling matches what existing clients receive.
type WatcherResources struct {
	ConsoleMessage          bool `json:"console-message"`
	CSSChange               bool `json:"css-change"`
	CSSMessage              bool `json:"css-message"`
	CSSRegisteredProperties bool `json:"css-registered-properties"`
	DocumentEvent           bool `json:"document-event"`
	Cache                   bool `json:"cache"`
	Cookies                 bool `json:"cookies"`
	ErrorMessage            bool `json:"error-message"`
	ExtensionStorage        bool `json:"extension-storage"`
	IndexedDB               bool `json:"indexed-db"`
	LocalStorage            bool `json:"local-storage"`
	SessionStorage          bool `json:"session-storage"`
	PlatformMessage         bool `json:"platform-message"`
	NetworkEvent            bool `json:"network-event"`
	NetworkEventStacktrace  bool `json:"network-event-stacktrace"`
	Reflow                  bool `json:"reflow"`
	Stylesheet              bool `json:"stylesheet"`
	Source                  bool `json:"source"`
	ThreadState             bool `json:"threadstate"`
	ServerSentEvent         bool `json:"server-sent-event"`
	WebSocket               bool `json:"websocket"`
	JSTracerTrace           bool `json:"jstracert-trace"`
	JSTracerState           bool `json:"jstracer-state"`
	LastPrivateContextExit  bool `json:"last-private-context-exit"`
}

// WatcherTraits advertises which target types and resource kinds a watcher supports.
type WatcherTraits struct {
	Frame         bool             `json:"frame"`
	Process       bool             `json:"process"`
	Worker        bool             `json:"worker"`
	ServiceWorker bool             `json:"service_worker"`
	Resources     WatcherResources `json:"resources"`
}

// NewWatcherTraits returns the capabilities of every watcher: frame targets and console messages only.
// Both the getWatcher reply and WatcherActor.Encodable use it, so the two cannot disagree.
func NewWatcherTraits() WatcherTraits {
	return WatcherTraits{
		Frame:         true,
		Process:       false,
		Worker:        false,
		ServiceWorker: false,
		Resources: WatcherResources{
			ConsoleMessage: true,
		},
	}
}

// TabDescriptorTraits advertises what a tab descriptor supports.
type TabDescriptorTraits struct {
	Watcher                  bool `json:"watcher"`
	SupportsReloadDescriptor bool `json:"supportsReloadDescriptor"`
}
