/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"sync"
)

const browsingContextPrefix = "browsingContext"

// BrowsingContextID identifies a browsing context (a page or frame) across navigations.
type BrowsingContextID uint32

// PipelineID identifies the document currently loaded in a browsing context.
// It changes on every navigation.
type PipelineID uint32

// BrowsingContextTraits advertises what the browsing context target supports.
type BrowsingContextTraits struct {
	IsBrowsingContext bool `json:"isBrowsingContext"`
	Frames            bool `json:"frames"`
	Watchpoints       bool `json:"watchpoints"`
}

// BrowsingContextMsg is the target form of a browsing context as sent to clients.
type BrowsingContextMsg struct {
	Actor             ActorName             `json:"actor"`
	Title             string                `json:"title"`
	URL               string                `json:"url"`
	BrowsingContextID BrowsingContextID     `json:"browsingContextID"`
	OuterWindowID     PipelineID            `json:"outerWindowID"`
	IsTopLevelTarget  bool                  `json:"isTopLevelTarget"`
	Traits            BrowsingContextTraits `json:"traits"`
}

// BrowsingContextActor holds the debugger-visible state of one page or frame.
// Title, URL and active pipeline are updated by the embedder as the page navigates.
type BrowsingContextActor struct {
	name              ActorName
	browsingContextID BrowsingContextID

	lock             sync.RWMutex
	title            string
	url              string
	activePipelineID PipelineID
}

// browsingContextState is a consistent copy of the mutable fields.
type browsingContextState struct {
	title            string
	url              string
	activePipelineID PipelineID
}

// NewBrowsingContext creates a browsing context actor with a fresh name. The caller registers it.
func NewBrowsingContext(
	registry *Registry,
	id BrowsingContextID,
	pipeline PipelineID,
	title string,
	url string,
) *BrowsingContextActor {
	return &BrowsingContextActor{
		name:              registry.NewName(browsingContextPrefix),
		browsingContextID: id,
		title:             title,
		url:               url,
		activePipelineID:  pipeline,
	}
}

func (bc *BrowsingContextActor) Name() ActorName {
	return bc.name
}

// HandleMessage ignores every message: the browsing context protocol itself is served elsewhere.
func (bc *BrowsingContextActor) HandleMessage(_ *Registry, _ Message, _ PacketWriter) (MessageStatus, error) {
	return Ignored, nil
}

func (bc *BrowsingContextActor) BrowsingContextID() BrowsingContextID {
	return bc.browsingContextID
}

func (bc *BrowsingContextActor) Title() string {
	return bc.state().title
}

func (bc *BrowsingContextActor) URL() string {
	return bc.state().url
}

func (bc *BrowsingContextActor) ActivePipelineID() PipelineID {
	return bc.state().activePipelineID
}

func (bc *BrowsingContextActor) SetTitle(title string) {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	bc.title = title
}

// Navigate records that a new document was loaded into the browsing context.
func (bc *BrowsingContextActor) Navigate(pipeline PipelineID, url string, title string) {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	bc.activePipelineID = pipeline
	bc.url = url
	bc.title = title
}

// Encodable returns the target form built from the current state.
func (bc *BrowsingContextActor) Encodable() BrowsingContextMsg {
	state := bc.state()
	return BrowsingContextMsg{
		Actor:             bc.name,
		Title:             state.title,
		URL:               state.url,
		BrowsingContextID: bc.browsingContextID,
		OuterWindowID:     state.activePipelineID,
		IsTopLevelTarget:  true,
		Traits: BrowsingContextTraits{
			IsBrowsingContext: true,
			Frames:            true,
			Watchpoints:       false,
		},
	}
}

func (bc *BrowsingContextActor) state() browsingContextState {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return browsingContextState{
		title:            bc.title,
		url:              bc.url,
		activePipelineID: bc.activePipelineID,
	}
}

var _ Actor = (*BrowsingContextActor)(nil)
