package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSetUsername changes the client's display name.
	CommandSetUsername CommandKind = iota
	// CommandCreateRoom creates a room owned by the client.
	CommandCreateRoom
	// CommandJoinRoom joins a room by its six-letter code.
	CommandJoinRoom
	// CommandLeaveRoom leaves the client's current room.
	CommandLeaveRoom
	// CommandListPublicRooms requests a snapshot of public rooms.
	CommandListPublicRooms
	// CommandSendMessage delivers a chat message to the current room.
	CommandSendMessage
)

// Command represents an action requested by a client. Only the fields
// relevant to Kind are set.
type Command struct {
	Kind     CommandKind
	Username string
	RoomName string
	Public   bool
	Code     string
	Text     string
}
