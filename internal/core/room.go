package core

import "math/rand/v2"

const (
	codeLength = 6
	// The historical generator skipped the letter Z; that was an
	// accident, so codes here use the full alphabet.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// DefaultHistoryLimit bounds the in-memory message tail kept per room.
	DefaultHistoryLimit = 50
)

// Room groups clients exchanging messages. A room is keyed by the
// identity of the client that created it; the owner is a regular member
// from the moment of creation.
type Room struct {
	OwnerID string
	Name    string
	Code    string
	Public  bool

	members map[string]*Client
	history []Message
}

// Info returns the room's public descriptor.
func (r *Room) Info() RoomInfo {
	return RoomInfo{Code: r.Code, Name: r.Name, OwnerID: r.OwnerID}
}

// HasMember reports whether the identity is in the member set.
func (r *Room) HasMember(id string) bool {
	_, ok := r.members[id]
	return ok
}

// Members returns a snapshot of the current member set, so a membership
// change mid-broadcast cannot skip or duplicate a delivery.
func (r *Room) Members() []*Client {
	out := make([]*Client, 0, len(r.members))
	for _, c := range r.members {
		out = append(out, c)
	}
	return out
}

// History returns a copy of the recent-message tail, oldest first.
func (r *Room) History() []Message {
	out := make([]Message, len(r.history))
	copy(out, r.history)
	return out
}

// RoomRegistry owns room lifecycle and membership. Like ClientRegistry
// it is confined to the hub goroutine and holds no lock of its own.
type RoomRegistry struct {
	rooms        map[string]*Room
	historyLimit int
}

// NewRoomRegistry constructs an empty registry. A non-positive
// historyLimit falls back to DefaultHistoryLimit.
func NewRoomRegistry(historyLimit int) *RoomRegistry {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &RoomRegistry{
		rooms:        make(map[string]*Room),
		historyLimit: historyLimit,
	}
}

// Create makes a room owned by the given client and joins the owner to
// it. Fails with ErrAlreadyOwnsRoom if the client already owns a live
// room; the existing room is left untouched.
func (r *RoomRegistry) Create(owner *Client, name string, public bool) (*Room, error) {
	if _, exists := r.rooms[owner.ID]; exists {
		return nil, ErrAlreadyOwnsRoom
	}

	if name == "" {
		name = owner.Name + "'s Room"
	}

	room := &Room{
		OwnerID: owner.ID,
		Name:    name,
		Code:    r.generateCode(),
		Public:  public,
		members: make(map[string]*Client),
	}
	r.rooms[owner.ID] = room
	r.addMember(room, owner)
	return room, nil
}

// FindByCode resolves a join code with a case-sensitive exact match.
// Linear scan; the room population is small.
func (r *RoomRegistry) FindByCode(code string) (*Room, bool) {
	for _, room := range r.rooms {
		if room.Code == code {
			return room, true
		}
	}
	return nil, false
}

// FindByOwner looks up the room created by the given identity.
func (r *RoomRegistry) FindByOwner(ownerID string) (*Room, bool) {
	room, ok := r.rooms[ownerID]
	return room, ok
}

// Join adds the client to the room resolved by code. This is the only
// path that sets a client's current-room reference, so membership and
// the reference always change together.
func (r *RoomRegistry) Join(code string, c *Client) (*Room, error) {
	room, ok := r.FindByCode(code)
	if !ok {
		return nil, ErrNoSuchCode
	}
	r.addMember(room, c)
	return room, nil
}

// Leave removes the client from its current room, if any, and clears
// the reference. The room survives even when it becomes empty; only an
// owner disconnect destroys it. Returns the room left, if any.
func (r *RoomRegistry) Leave(c *Client) (*Room, bool) {
	if !c.InRoom() {
		return nil, false
	}
	room, ok := r.rooms[c.RoomOwner]
	c.RoomOwner = ""
	if !ok {
		return nil, false
	}
	delete(room.members, c.ID)
	return room, true
}

// Destroy evicts the room owned by the given identity and clears every
// member's current-room reference. Callers notify the members and the
// public listing. Returns the removed room, if any.
func (r *RoomRegistry) Destroy(ownerID string) (*Room, bool) {
	room, ok := r.rooms[ownerID]
	if !ok {
		return nil, false
	}
	for _, m := range room.members {
		m.RoomOwner = ""
	}
	delete(r.rooms, ownerID)
	return room, true
}

// ListPublic returns a snapshot of all rooms with the public flag set.
func (r *RoomRegistry) ListPublic() []RoomInfo {
	out := make([]RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.Public {
			out = append(out, room.Info())
		}
	}
	return out
}

// Record appends a message to the room's tail, dropping the oldest
// entry once the limit is reached.
func (r *RoomRegistry) Record(room *Room, msg Message) {
	room.history = append(room.history, msg)
	if len(room.history) > r.historyLimit {
		room.history = room.history[len(room.history)-r.historyLimit:]
	}
}

func (r *RoomRegistry) addMember(room *Room, c *Client) {
	room.members[c.ID] = c
	c.RoomOwner = room.OwnerID
}

// generateCode produces a join code unique among live rooms,
// regenerating on the (unlikely) collision.
func (r *RoomRegistry) generateCode() string {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := r.FindByCode(code); !taken {
			return code
		}
	}
}
