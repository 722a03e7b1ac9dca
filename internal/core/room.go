package core

import "sort"

// Room groups clients joined to the same room key. Rooms are created
// lazily by the Registry and removed once their member set is empty.
// All methods are called with the Registry's lock held.
type Room struct {
	Key     string
	members map[*Client]struct{}
}

func newRoom(key string) *Room {
	return &Room{
		Key:     key,
		members: make(map[*Client]struct{}),
	}
}

func (r *Room) add(c *Client) {
	r.members[c] = struct{}{}
}

func (r *Room) remove(c *Client) {
	delete(r.members, c)
}

func (r *Room) empty() bool {
	return len(r.members) == 0
}

// broadcast sends an event to all clients in the room.
func (r *Room) broadcast(event *Event) {
	for client := range r.members {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// presence returns the sorted set of distinct identities in the room.
// Membership is keyed by connection, so two connections sharing a
// display name collapse to one entry and survive each other's leave.
func (r *Room) presence() []string {
	seen := make(map[string]struct{}, len(r.members))
	for client := range r.members {
		seen[client.Name] = struct{}{}
	}
	users := make([]string, 0, len(seen))
	for name := range seen {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}
