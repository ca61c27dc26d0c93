/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"encoding/json"
)

const (
	watcherPrefix = "watcher"

	targetAvailableType   = "target-available-form"
	resourceAvailableType = "resource-available-form"
)

type watcherMessageKind int

const (
	watcherUnknown watcherMessageKind = iota
	watcherWatchTargets
	watcherUnwatchTargets
	watcherWatchResources
	watcherUnwatchResources
)

func parseWatcherMessage(msgType string) watcherMessageKind {
	switch msgType {
	case "watchTargets":
		return watcherWatchTargets
	case "unwatchTargets":
		return watcherUnwatchTargets
	case "watchResources":
		return watcherWatchResources
	case "unwatchResources":
		return watcherUnwatchResources
	default:
		return watcherUnknown
	}
}

// TargetAvailableMsg is pushed when a target the client watches becomes available.
type TargetAvailableMsg struct {
	Type   string             `json:"type"`
	Target BrowsingContextMsg `json:"target"`
	From   ActorName          `json:"from"`
}

// resourceAvailableMsg is the push that carries resources to a client.
// No resource producer exists yet, so watchers never send it.
type resourceAvailableMsg struct {
	Type      string            `json:"type"`
	Resources []json.RawMessage `json:"resources"`
}

// newResourceAvailableMsg builds a resource push; a nil slice is sent as an empty array.
func newResourceAvailableMsg(resources []json.RawMessage) resourceAvailableMsg {
	if resources == nil {
		resources = []json.RawMessage{}
	}
	return resourceAvailableMsg{
		Type:      resourceAvailableType,
		Resources: resources,
	}
}

// WatcherActorMsg is the form of a watcher as sent to clients.
type WatcherActorMsg struct {
	Actor  ActorName     `json:"actor"`
	Traits WatcherTraits `json:"traits"`
}

// WatcherActor manages target and resource subscriptions for one browsing context.
type WatcherActor struct {
	name            ActorName
	browsingContext ActorName
}

// NewWatcher creates a watcher for the named browsing context. The caller registers it.
func NewWatcher(registry *Registry, browsingContext ActorName) *WatcherActor {
	return &WatcherActor{
		name:            registry.NewName(watcherPrefix),
		browsingContext: browsingContext,
	}
}

func (w *WatcherActor) Name() ActorName {
	return w.name
}

// BrowsingContext returns the name of the watched browsing context.
func (w *WatcherActor) BrowsingContext() ActorName {
	return w.browsingContext
}

func (w *WatcherActor) HandleMessage(registry *Registry, msg Message, out PacketWriter) (MessageStatus, error) {
	log := registry.Log().WithValues("Actor", w.name, "Type", msg.Type)

	switch parseWatcherMessage(msg.Type) {
	case watcherWatchTargets:
		targetType, found := msg.Body["targetType"]
		if !found {
			return Ignored, nil
		}
		log.V(1).Info("Watching targets", "TargetType", string(targetType))

		frame := Find[*BrowsingContextActor](registry, w.browsingContext).Encodable()
		writeReply(log, out, w.name, TargetAvailableMsg{
			Type:   targetAvailableType,
			Target: frame,
			From:   w.name,
		})
		return Processed, nil

	case watcherWatchResources:
		// No resource producers are attached yet, so there is nothing to announce.
		// The request is still acknowledged as understood.
		log.V(1).Info("Resource watch requested; no resources available")
		return Processed, nil

	case watcherUnwatchTargets, watcherUnwatchResources:
		return Processed, nil

	default:
		return Ignored, nil
	}
}

// Encodable returns the client-visible form of the watcher.
func (w *WatcherActor) Encodable() WatcherActorMsg {
	return WatcherActorMsg{
		Actor:  w.name,
		Traits: NewWatcherTraits(),
	}
}

var _ Actor = (*WatcherActor)(nil)
