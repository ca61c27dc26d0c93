/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package actors implements the actor layer of the remote debugging protocol (RDP).

# Object Model

Every server-side object a debugging client can talk to is an actor: a named object
that receives JSON packets addressed to its name and answers with JSON packets whose
"from" field carries that name. Actors reference each other by ActorName only; the
Registry resolves names to instances, so holding a name never keeps an actor alive.

# Key Components

  - Registry: per-session table of live actors, name allocation, typed lookup
  - RootActor: the well-known "root" actor, holds the list of tab descriptors
  - BrowsingContextActor: snapshot source for one page or frame
  - TabDescriptorActor: one tab as seen by the client; answers getTarget, getFavicon and getWatcher
  - WatcherActor: advertises supported target and resource kinds; answers watchTargets and watchResources

# Creation Order

	registry := actors.NewRegistry(log)
	root := actors.NewRootActor()
	_ = registry.Register(root)

	ctx := actors.NewBrowsingContext(registry, 1, 1, "Example", "https://example.test")
	_ = registry.Register(ctx)

	// Registers the descriptor and its watcher, then appends the descriptor to the root tab list.
	tab, _ := actors.NewTabDescriptor(registry, ctx.Name())

# Message Status

HandleMessage reports Processed when the actor understood the packet (whether or not it
wrote a reply) and Ignored when it did not. A dispatcher turns Ignored into an
"unrecognizedPacketType" error for the client. A non-nil error means the actor understood
the packet but could not complete it.
*/
package actors
