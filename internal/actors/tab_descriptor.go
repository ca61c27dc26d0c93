/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"fmt"
)

const tabDescriptorPrefix = "tabDescription"

type tabDescriptorMessageKind int

const (
	tabDescriptorUnknown tabDescriptorMessageKind = iota
	tabDescriptorGetTarget
	tabDescriptorGetFavicon
	tabDescriptorGetWatcher
)

func parseTabDescriptorMessage(msgType string) tabDescriptorMessageKind {
	switch msgType {
	case "getTarget":
		return tabDescriptorGetTarget
	case "getFavicon":
		return tabDescriptorGetFavicon
	case "getWatcher":
		return tabDescriptorGetWatcher
	default:
		return tabDescriptorUnknown
	}
}

// TabDescriptorActorMsg is the form of a tab as listed to clients.
// OuterWindowID and BrowserID are both derived from the active pipeline.
type TabDescriptorActorMsg struct {
	Actor             ActorName           `json:"actor"`
	Title             string              `json:"title"`
	URL               string              `json:"url"`
	OuterWindowID     PipelineID          `json:"outerWindowID"`
	BrowsingContextID BrowsingContextID   `json:"browsingContextId"`
	BrowserID         PipelineID          `json:"browserId"`
	Selected          bool                `json:"selected"`
	IsZombieTab       bool                `json:"isZombieTab"`
	Traits            TabDescriptorTraits `json:"traits"`
}

type getTargetReply struct {
	From  ActorName          `json:"from"`
	Frame BrowsingContextMsg `json:"frame"`
}

type getFaviconReply struct {
	From    ActorName `json:"from"`
	Favicon string    `json:"favicon"`
}

type getWatcherReply struct {
	From   ActorName     `json:"from"`
	Actor  ActorName     `json:"actor"`
	Traits WatcherTraits `json:"traits"`
}

// TabDescriptorActor represents one browsable tab to the client.
type TabDescriptorActor struct {
	name            ActorName
	browsingContext ActorName
	watcher         ActorName
}

// NewTabDescriptor creates a descriptor for the named browsing context and registers it,
// together with its watcher. On return the descriptor is listed by the root actor and
// both the descriptor and the watcher resolve through the registry.
func NewTabDescriptor(registry *Registry, browsingContext ActorName) (*TabDescriptorActor, error) {
	td := &TabDescriptorActor{
		name:            registry.NewName(tabDescriptorPrefix),
		browsingContext: browsingContext,
	}

	if err := td.ensureWatcher(registry); err != nil {
		return nil, err
	}

	if err := registry.Register(td); err != nil {
		registry.Unregister(td.watcher)
		return nil, err
	}

	Find[*RootActor](registry, RootActorName).AddTab(td.name)
	return td, nil
}

// ensureWatcher creates and registers the watcher on first use.
// It runs from the constructor today; moving it to getWatcher would make watcher creation lazy.
func (td *TabDescriptorActor) ensureWatcher(registry *Registry) error {
	if td.watcher != "" {
		return nil
	}

	watcher := NewWatcher(registry, td.browsingContext)
	if err := registry.Register(watcher); err != nil {
		return fmt.Errorf("could not create watcher for tab descriptor '%s': %w", td.name, err)
	}

	td.watcher = watcher.Name()
	return nil
}

func (td *TabDescriptorActor) Name() ActorName {
	return td.name
}

// BrowsingContext returns the name of the described browsing context.
func (td *TabDescriptorActor) BrowsingContext() ActorName {
	return td.browsingContext
}

// Watcher returns the name of the descriptor's watcher.
func (td *TabDescriptorActor) Watcher() ActorName {
	return td.watcher
}

func (td *TabDescriptorActor) HandleMessage(registry *Registry, msg Message, out PacketWriter) (MessageStatus, error) {
	log := registry.Log().WithValues("Actor", td.name, "Type", msg.Type)

	switch parseTabDescriptorMessage(msg.Type) {
	case tabDescriptorGetTarget:
		frame := Find[*BrowsingContextActor](registry, td.browsingContext).Encodable()
		writeReply(log, out, td.name, getTargetReply{
			From:  td.name,
			Frame: frame,
		})
		return Processed, nil

	case tabDescriptorGetFavicon:
		// Favicons are not captured; clients get an empty one.
		writeReply(log, out, td.name, getFaviconReply{
			From:    td.name,
			Favicon: "",
		})
		return Processed, nil

	case tabDescriptorGetWatcher:
		writeReply(log, out, td.name, getWatcherReply{
			From:   td.name,
			Actor:  td.watcher,
			Traits: NewWatcherTraits(),
		})
		return Processed, nil

	default:
		return Ignored, nil
	}
}

// Encodable returns the descriptor as listed to clients, read from the browsing context's current state.
func (td *TabDescriptorActor) Encodable(registry *Registry, selected bool) TabDescriptorActorMsg {
	bc := Find[*BrowsingContextActor](registry, td.browsingContext)
	state := bc.state()

	return TabDescriptorActorMsg{
		Actor:             td.name,
		Title:             state.title,
		URL:               state.url,
		OuterWindowID:     state.activePipelineID,
		BrowsingContextID: bc.BrowsingContextID(),
		BrowserID:         state.activePipelineID,
		Selected:          selected,
		IsZombieTab:       false,
		Traits: TabDescriptorTraits{
			Watcher:                  true,
			SupportsReloadDescriptor: false,
		},
	}
}

// Close tears the tab down: the descriptor and its watcher leave the registry and the root tab list.
// The browsing context is not owned by the descriptor and stays registered.
func (td *TabDescriptorActor) Close(registry *Registry) {
	if actor, found := registry.Lookup(RootActorName); found {
		if root, isRoot := actor.(*RootActor); isRoot {
			root.RemoveTab(td.name)
		}
	}

	if td.watcher != "" {
		registry.Unregister(td.watcher)
	}
	registry.Unregister(td.name)
}

var _ Actor = (*TabDescriptorActor)(nil)
