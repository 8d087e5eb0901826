package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUsername delivers the generated display name right after connect.
	EventUsername EventKind = iota
	// EventAttemptJoin tells the room creator which code to join with.
	EventAttemptJoin
	// EventJoinConfirmed confirms a successful join to the requester.
	EventJoinConfirmed
	// EventNewPublicRoom announces a fresh public room to every client.
	EventNewPublicRoom
	// EventDeletePublicRoom removes a room from every client's listing.
	EventDeletePublicRoom
	// EventRoomClosed evicts a member because the room was torn down.
	EventRoomClosed
	// EventPublicRooms delivers the public-room snapshot to one client.
	EventPublicRooms
	// EventMessage carries a chat message to a room member.
	EventMessage
	// EventUserStatus announces a member joining or leaving a room.
	EventUserStatus
)

// RoomInfo is the public descriptor of a room (listing entry).
type RoomInfo struct {
	Code    string
	Name    string
	OwnerID string
}

// Event is sent to clients to describe what happened in the system.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Username string
	Code     string
	Room     *RoomInfo
	Rooms    []RoomInfo
	OwnerID  string
	Join     bool
	Message  *Message
}
