package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Hub is the coordination point of the relay. A single Run goroutine
// owns both registries, so handlers never race: a create_room and a
// concurrent owner-disconnect for the same identity are serialized here.
type Hub struct {
	log *zerolog.Logger

	clients *ClientRegistry
	rooms   *RoomRegistry

	register   chan *Client
	unregister chan *Client
	commands   chan submission
	queries    chan publicRoomsQuery
	done       chan struct{}

	handlers map[CommandKind]func(*Client, *Command)
}

type submission struct {
	client *Client
	cmd    *Command
}

type publicRoomsQuery struct {
	reply chan []RoomInfo
}

// NewHub constructs a hub. A nil logger disables logging; a non-positive
// historyLimit falls back to DefaultHistoryLimit.
func NewHub(logger *zerolog.Logger, historyLimit int) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	h := &Hub{
		log:        logger,
		clients:    NewClientRegistry(),
		rooms:      NewRoomRegistry(historyLimit),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan submission),
		queries:    make(chan publicRoomsQuery),
		done:       make(chan struct{}),
	}
	h.handlers = map[CommandKind]func(*Client, *Command){
		CommandSetUsername:     h.handleSetUsername,
		CommandCreateRoom:      h.handleCreateRoom,
		CommandJoinRoom:        h.handleJoinRoom,
		CommandLeaveRoom:       h.handleLeaveRoom,
		CommandListPublicRooms: h.handleListPublicRooms,
		CommandSendMessage:     h.handleSendMessage,
	}
	return h
}

// Run processes registrations, commands and queries until the context
// is cancelled. It must be running before clients are registered.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.onConnect(c)
		case c := <-h.unregister:
			h.onDisconnect(c)
		case sub := <-h.commands:
			h.dispatch(sub.client, sub.cmd)
		case q := <-h.queries:
			q.reply <- h.rooms.ListPublic()
		}
	}
}

// RegisterClient hands a fresh connection to the hub and starts pumping
// its command channel into the hub loop. The pump exits when the
// transport closes the Commands channel.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		return
	}

	go func() {
		for cmd := range c.Commands {
			select {
			case h.commands <- submission{client: c, cmd: cmd}:
			case <-h.done:
				return
			}
		}
	}()
}

// UnregisterClient runs the disconnect cascade for a departed
// connection. The transport must close the Commands channel first.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// PublicRooms returns a snapshot of the public-room listing, serialized
// through the hub loop like every other registry access.
func (h *Hub) PublicRooms(ctx context.Context) ([]RoomInfo, error) {
	q := publicRoomsQuery{reply: make(chan []RoomInfo, 1)}
	select {
	case h.queries <- q:
	case <-h.done:
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rooms := <-q.reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) onConnect(c *Client) {
	if err := h.clients.Register(c); err != nil {
		// Generated identities colliding means something is deeply
		// wrong; refuse the connection rather than corrupt the registry.
		h.log.Error().Err(err).Str("client_id", c.ID).Msg("refusing connection")
		close(c.Events)
		return
	}

	h.log.Info().Str("client_id", c.ID).Str("username", c.Name).
		Int("clients", h.clients.Len()).Msg("client connected")

	h.emitTo(c, &Event{Kind: EventUsername, Username: c.Name})
}

// onDisconnect runs the cascading cleanup. Room state is read and fixed
// before the client record is deleted.
func (h *Hub) onDisconnect(c *Client) {
	if registered, ok := h.clients.Get(c.ID); !ok || registered != c {
		return
	}

	if room, ok := h.rooms.FindByOwner(c.ID); ok {
		if room.Public {
			h.emitAll(&Event{Kind: EventDeletePublicRoom, OwnerID: c.ID})
		}
		for _, m := range room.Members() {
			if m.ID == c.ID {
				continue
			}
			h.emitTo(m, &Event{Kind: EventRoomClosed})
		}
		h.rooms.Destroy(c.ID)
		h.log.Info().Str("client_id", c.ID).Str("room", room.Name).Msg("room deleted")
	}

	// Owning a room and belonging to one are independent: the client may
	// own R while sitting in someone else's S. Destroy above already
	// cleared the membership when it was in the owned room; anything
	// still current ends here, before the record and queue go away.
	if c.InRoom() {
		h.leaveCurrentRoom(c)
	}

	h.clients.Remove(c.ID)
	close(c.Events)

	h.log.Info().Str("client_id", c.ID).Int("clients", h.clients.Len()).
		Msg("client disconnected")
}

// dispatch routes a command to its handler. A panicking handler is
// logged and contained; one client's bad input must never affect others.
func (h *Hub) dispatch(c *Client, cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("client_id", c.ID).
				Int("kind", int(cmd.Kind)).Msg("handler fault")
		}
	}()

	if registered, ok := h.clients.Get(c.ID); !ok || registered != c {
		h.log.Debug().Str("client_id", c.ID).Msg("command from unregistered client")
		return
	}

	handler, ok := h.handlers[cmd.Kind]
	if !ok {
		h.log.Warn().Int("kind", int(cmd.Kind)).Msg("no handler for command kind")
		return
	}
	handler(c, cmd)
}

// ----- handlers -----

func (h *Hub) handleSetUsername(c *Client, cmd *Command) {
	h.log.Info().Str("client_id", c.ID).Str("old", c.Name).
		Str("new", cmd.Username).Msg("username changed")
	h.clients.Rename(c.ID, cmd.Username)
}

func (h *Hub) handleCreateRoom(c *Client, cmd *Command) {
	if _, owns := h.rooms.FindByOwner(c.ID); owns {
		h.log.Debug().Str("client_id", c.ID).Msg("create_room while already owning one")
		return
	}

	// Creation joins the owner, so an existing membership ends first.
	if c.InRoom() {
		h.leaveCurrentRoom(c)
	}

	room, err := h.rooms.Create(c, cmd.RoomName, cmd.Public)
	if err != nil {
		h.log.Debug().Err(err).Str("client_id", c.ID).Msg("create_room rejected")
		return
	}

	h.log.Info().Str("client_id", c.ID).Str("room", room.Name).
		Str("code", room.Code).Bool("public", room.Public).Msg("room created")

	h.emitTo(c, &Event{Kind: EventAttemptJoin, Code: room.Code})

	if room.Public {
		info := room.Info()
		h.emitAll(&Event{Kind: EventNewPublicRoom, Room: &info})
	}

	// The owner is a member from the start.
	h.emitTo(c, &Event{Kind: EventJoinConfirmed, Code: room.Code})
	h.emitRoom(room, &Event{Kind: EventUserStatus, Username: c.Name, Join: true})
}

func (h *Hub) handleJoinRoom(c *Client, cmd *Command) {
	room, ok := h.rooms.FindByCode(cmd.Code)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Str("code", cmd.Code).
			Msg("join_room with unknown code")
		return
	}

	// Joining a room you are already in just re-confirms; the historical
	// client flow follows create_room with an explicit join_room.
	if room.HasMember(c.ID) {
		h.emitTo(c, &Event{Kind: EventJoinConfirmed, Code: room.Code})
		return
	}

	if c.InRoom() {
		h.leaveCurrentRoom(c)
	}

	if _, err := h.rooms.Join(cmd.Code, c); err != nil {
		h.log.Debug().Err(err).Str("client_id", c.ID).Msg("join_room rejected")
		return
	}

	h.log.Info().Str("client_id", c.ID).Str("room", room.Name).Msg("client joined room")

	h.emitTo(c, &Event{Kind: EventJoinConfirmed, Code: room.Code})

	// Replay the recent tail so the joiner has context.
	for _, msg := range room.History() {
		m := msg
		h.emitTo(c, &Event{Kind: EventMessage, Message: &m})
	}

	h.emitRoom(room, &Event{Kind: EventUserStatus, Username: c.Name, Join: true})
}

func (h *Hub) handleLeaveRoom(c *Client, _ *Command) {
	if !c.InRoom() {
		return
	}
	h.leaveCurrentRoom(c)
}

func (h *Hub) handleListPublicRooms(c *Client, _ *Command) {
	h.emitTo(c, &Event{Kind: EventPublicRooms, Rooms: h.rooms.ListPublic()})
}

func (h *Hub) handleSendMessage(c *Client, cmd *Command) {
	if !c.InRoom() {
		h.log.Debug().Str("client_id", c.ID).Msg("send_message while roomless")
		return
	}
	room, ok := h.rooms.FindByOwner(c.RoomOwner)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Msg("send_message into vanished room")
		return
	}

	msg := Message{
		SenderID:   c.ID,
		SenderName: c.Name,
		Text:       cmd.Text,
		SentAt:     time.Now(),
	}
	h.rooms.Record(room, msg)
	h.emitRoom(room, &Event{Kind: EventMessage, Message: &msg})
}

func (h *Hub) leaveCurrentRoom(c *Client) {
	room, ok := h.rooms.Leave(c)
	if !ok {
		return
	}
	h.log.Info().Str("client_id", c.ID).Str("room", room.Name).Msg("client left room")
	h.emitRoom(room, &Event{Kind: EventUserStatus, Username: c.Name, Join: false})
}

// ----- emit gateway -----

// emitTo queues an event for one client. Delivery is best effort: a
// full queue means a slow consumer and the event is dropped.
func (h *Hub) emitTo(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Debug().Str("client_id", c.ID).Int("kind", int(ev.Kind)).
			Msg("dropping event for slow consumer")
	}
}

// emitRoom fans an event out to a snapshot of the room's members.
func (h *Hub) emitRoom(room *Room, ev *Event) {
	for _, m := range room.Members() {
		h.emitTo(m, ev)
	}
}

// emitAll fans an event out to every connected client.
func (h *Hub) emitAll(ev *Event) {
	for _, c := range h.clients.All() {
		h.emitTo(c, ev)
	}
}
