package core

import "sync"

// Registry owns room membership: which clients are in which room, and
// which room a client is currently in. A client is a member of at most
// one room at a time. One mutex guards the whole structure; every
// operation is a short in-memory critical section, so a join that
// switches rooms is atomic with respect to concurrent observers.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	byConn map[*Client]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[*Client]*Room),
	}
}

// Join moves the client into the room with the given key, creating the
// room if absent and leaving the client's current room first. It
// returns the previous room key and whether the client switched from a
// different room.
func (r *Registry) Join(c *Client, key string) (prevKey string, switched bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[c]; ok {
		prevKey = prev.Key
		switched = prev.Key != key
		prev.remove(c)
		if prev.empty() {
			delete(r.rooms, prev.Key)
		}
	}

	room, ok := r.rooms[key]
	if !ok {
		room = newRoom(key)
		r.rooms[key] = room
	}
	room.add(c)
	r.byConn[c] = room

	return prevKey, switched
}

// Leave removes the client from its current room, deleting the room if
// it becomes empty. Returns the vacated room key, or ok=false if the
// client was not in a room (a no-op, not an error).
func (r *Registry) Leave(c *Client) (key string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byConn[c]
	if !ok {
		return "", false
	}
	delete(r.byConn, c)
	room.remove(c)
	if room.empty() {
		delete(r.rooms, room.Key)
	}
	return room.Key, true
}

// RoomOf reports the room key the client is currently in.
func (r *Registry) RoomOf(c *Client) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byConn[c]
	if !ok {
		return "", false
	}
	return room.Key, true
}

// Presence returns the sorted distinct identities present in a room.
// An unknown key yields an empty list.
func (r *Registry) Presence(key string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[key]
	if !ok {
		return []string{}
	}
	return room.presence()
}

// Broadcast sends an event to every client currently in the room.
func (r *Registry) Broadcast(key string, event *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if room, ok := r.rooms[key]; ok {
		room.broadcast(event)
	}
}
