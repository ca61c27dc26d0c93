/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package devtools runs remote debugging sessions on top of the actor layer.

Every accepted connection gets its own Session: a fresh actor registry holding the root actor,
one browsing context and tab descriptor per configured tab, and the watchers those descriptors create.
The session sends the root greeting, then reads packets one at a time and routes each to the
actor named in its "to" field.

Protocol-level failures never reach the actors. The session answers them itself with an error packet:

	missingParameter        the packet has no "to" or no "type" field
	noSuchActor             no actor with the given name is registered
	unrecognizedPacketType  the actor ignored the message
	unknownError            the actor failed, panicked, or the packet could not be parsed

Sessions are independent; closing one drains its registry and leaves the others untouched.
*/
package devtools
