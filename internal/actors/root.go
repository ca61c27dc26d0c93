/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// RootActorName is the well-known name of the root actor. Clients talk to it first.
const RootActorName ActorName = "root"

type rootMessageKind int

const (
	rootUnknown rootMessageKind = iota
	rootListTabs
	rootGetTab
	rootGetRoot
)

func parseRootMessage(msgType string) rootMessageKind {
	switch msgType {
	case "listTabs":
		return rootListTabs
	case "getTab":
		return rootGetTab
	case "getRoot":
		return rootGetRoot
	default:
		return rootUnknown
	}
}

type RootTraits struct {
	Sources            bool `json:"sources"`
	Highlightable      bool `json:"highlightable"`
	CustomHighlighters bool `json:"customHighlighters"`
	NetworkMonitor     bool `json:"networkMonitor"`
}

// RootGreeting is the first packet a client receives after connecting.
type RootGreeting struct {
	From            ActorName  `json:"from"`
	ApplicationType string     `json:"applicationType"`
	Traits          RootTraits `json:"traits"`
}

type listTabsReply struct {
	From ActorName               `json:"from"`
	Tabs []TabDescriptorActorMsg `json:"tabs"`
}

type getTabReply struct {
	From ActorName             `json:"from"`
	Tab  TabDescriptorActorMsg `json:"tab"`
}

type getRootReply struct {
	From     ActorName `json:"from"`
	Selected int       `json:"selected"`
}

// NoTabReply is sent when getTab names a browser that has no tab.
type NoTabReply struct {
	From    ActorName `json:"from"`
	Error   string    `json:"error"`
	Message string    `json:"message"`
}

// RootActor is the entry point of a session. It keeps the ordered list of tab descriptors.
type RootActor struct {
	lock sync.Mutex
	tabs []ActorName
}

func NewRootActor() *RootActor {
	return &RootActor{}
}

func (r *RootActor) Name() ActorName {
	return RootActorName
}

// AddTab appends a tab descriptor to the tab list.
func (r *RootActor) AddTab(name ActorName) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tabs = append(r.tabs, name)
}

// RemoveTab removes a tab descriptor from the tab list. Unknown names are ignored.
func (r *RootActor) RemoveTab(name ActorName) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tabs = slices.DeleteFunc(r.tabs, func(tab ActorName) bool { return tab == name })
}

// Tabs returns a copy of the tab list.
func (r *RootActor) Tabs() []ActorName {
	r.lock.Lock()
	defer r.lock.Unlock()
	return slices.Clone(r.tabs)
}

// Greeting returns the packet announcing the server to a newly connected client.
func (r *RootActor) Greeting() RootGreeting {
	return RootGreeting{
		From:            RootActorName,
		ApplicationType: "browser",
		Traits: RootTraits{
			Sources:            false,
			Highlightable:      true,
			CustomHighlighters: true,
			NetworkMonitor:     false,
		},
	}
}

func (r *RootActor) HandleMessage(registry *Registry, msg Message, out PacketWriter) (MessageStatus, error) {
	log := registry.Log().WithValues("Actor", RootActorName, "Type", msg.Type)

	switch parseRootMessage(msg.Type) {
	case rootListTabs:
		tabs := r.Tabs()
		forms := make([]TabDescriptorActorMsg, 0, len(tabs))
		for i, name := range tabs {
			forms = append(forms, Find[*TabDescriptorActor](registry, name).Encodable(registry, i == 0))
		}
		writeReply(log, out, RootActorName, listTabsReply{From: RootActorName, Tabs: forms})
		return Processed, nil

	case rootGetTab:
		return r.getTab(registry, msg, out)

	case rootGetRoot:
		writeReply(log, out, RootActorName, getRootReply{From: RootActorName, Selected: 0})
		return Processed, nil

	default:
		return Ignored, nil
	}
}

func (r *RootActor) getTab(registry *Registry, msg Message, out PacketWriter) (MessageStatus, error) {
	log := registry.Log().WithValues("Actor", RootActorName, "Type", msg.Type)

	rawID, found := msg.Body["browserId"]
	if !found {
		return Ignored, nil
	}

	var browserID PipelineID
	if err := json.Unmarshal(rawID, &browserID); err != nil {
		return Processed, fmt.Errorf("invalid browserId %s: %w", string(rawID), err)
	}

	for i, name := range r.Tabs() {
		form := Find[*TabDescriptorActor](registry, name).Encodable(registry, i == 0)
		if form.BrowserID == browserID {
			writeReply(log, out, RootActorName, getTabReply{From: RootActorName, Tab: form})
			return Processed, nil
		}
	}

	writeReply(log, out, RootActorName, NoTabReply{
		From:    RootActorName,
		Error:   "noTab",
		Message: fmt.Sprintf("Unable to find tab with browserId '%d'", browserID),
	})
	return Processed, nil
}

var _ Actor = (*RootActor)(nil)
