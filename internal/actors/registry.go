/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package actors

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Registry maps actor names to actor instances for one debugging session.
// Lookups share a read lock; registration and removal are exclusive.
type Registry struct {
	log logr.Logger

	lock    sync.RWMutex
	actors  map[ActorName]Actor
	drained bool

	nextID atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(log logr.Logger) *Registry {
	return &Registry{
		log:    log,
		actors: make(map[ActorName]Actor),
	}
}

// Log returns the logger actors of this registry report through.
func (r *Registry) Log() logr.Logger {
	return r.log
}

// NewName allocates a name that no other actor of this registry has, or will ever have.
func (r *Registry) NewName(prefix string) ActorName {
	return ActorName(fmt.Sprintf("%s%d", prefix, r.nextID.Add(1)))
}

// Register adds an actor under its name.
func (r *Registry) Register(actor Actor) error {
	name := actor.Name()

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.drained {
		return fmt.Errorf("could not register actor '%s': %w", name, ErrRegistryDrained)
	}
	if _, found := r.actors[name]; found {
		return fmt.Errorf("could not register actor '%s': %w", name, ErrActorAlreadyRegistered)
	}

	r.actors[name] = actor
	r.log.V(1).Info("Actor registered", "Actor", name)
	return nil
}

// Unregister removes the named actor. Removing an unknown name is a no-op.
func (r *Registry) Unregister(name ActorName) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.actors[name]; found {
		delete(r.actors, name)
		r.log.V(1).Info("Actor unregistered", "Actor", name)
	}
}

// Lookup resolves a client-supplied name. Unknown names are a normal outcome here.
func (r *Registry) Lookup(name ActorName) (Actor, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	actor, found := r.actors[name]
	return actor, found
}

// Names returns the names of all registered actors in lexicographic order.
// The order is by string, not by allocation: "tabDescription10" sorts before "tabDescription2".
func (r *Registry) Names() []ActorName {
	r.lock.RLock()
	names := make([]ActorName, 0, len(r.actors))
	for name := range r.actors {
		names = append(names, name)
	}
	r.lock.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered actors.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.actors)
}

// Drain removes every actor and refuses further registrations.
// It is called once the session that owns the registry ends.
func (r *Registry) Drain() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.log.V(1).Info("Draining actor registry", "Actors", len(r.actors))
	r.actors = make(map[ActorName]Actor)
	r.drained = true
}

// Find resolves a peer actor name that is known to be valid and returns the actor as type T.
// A name that does not resolve, or resolves to a different kind of actor, means the actor graph
// is inconsistent; Find panics with an *InternalError in that case.
func Find[T Actor](r *Registry, name ActorName) T {
	actor, found := r.Lookup(name)
	if !found {
		panic(&InternalError{Name: name, Err: ErrActorNotFound})
	}

	typed, ok := actor.(T)
	if !ok {
		panic(&InternalError{
			Name: name,
			Err:  fmt.Errorf("%w: found %T, expected %T", ErrActorKindMismatch, actor, *new(T)),
		})
	}

	return typed
}

// FindAll returns all registered actors of type T, in the lexicographic order of their names.
func FindAll[T Actor](r *Registry) []T {
	var retval []T
	for _, name := range r.Names() {
		if actor, found := r.Lookup(name); found {
			if typed, ok := actor.(T); ok {
				retval = append(retval, typed)
			}
		}
	}
	return retval
}
