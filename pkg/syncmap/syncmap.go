/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package syncmap is a generic wrapper over standard library sync.Map
package syncmap

import "sync"

func zero[T any]() T {
	return *new(T)
}

type Map[Key comparable, Value any] sync.Map

func (m *Map[Key, Value]) syncMap() *sync.Map {
	return (*sync.Map)(m)
}

func (m *Map[Key, Value]) Store(key Key, value Value) {
	m.syncMap().Store(key, value)
}

// Returns the value stored in the map (if found), and a boolean indicating whether the value was found.
func (m *Map[Key, Value]) Load(key Key) (Value, bool) {
	anyValue, found := m.syncMap().Load(key)
	if !found {
		return zero[Value](), false
	} else {
		return zeroIfNil[Value](anyValue), true
	}
}

// Deletes the value for the passed key.
// If the key has no corresponding value, the map is unchanged.
func (m *Map[Key, Value]) Delete(key Key) {
	m.syncMap().Delete(key)
}

// Calls passed function foreach key-value pair in the map.
// If the function returns false, the iteration stops.
func (m *Map[Key, Value]) Range(f func(key Key, value Value) bool) {
	m.syncMap().Range(func(key, value any) bool {
		return f(key.(Key), zeroIfNil[Value](value))
	})
}

// Returns a point-in-time copy of all values in the map, in no particular order.
func (m *Map[Key, Value]) Values() []Value {
	var values []Value
	m.Range(func(_ Key, value Value) bool {
		values = append(values, value)
		return true
	})
	return values
}

func zeroIfNil[T any](v any) T {
	if v == nil {
		return zero[T]()
	} else {
		return v.(T)
	}
}
