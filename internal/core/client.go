package core

// Client is a chat participant as seen by the core layer. Commands are
// pumped into the hub by the transport; Events are drained by the
// transport's write loop. RoomOwner names the room the client is in
// (rooms are keyed by owner identity) and is owned by the hub goroutine.
type Client struct {
	ID        string
	Name      string
	RoomOwner string
	Commands  chan *Command
	Events    chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id, name string) *Client {
	if name == "" {
		name = id
	}
	return &Client{
		ID:       id,
		Name:     name,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
	}
}

// InRoom reports whether the client currently belongs to a room.
func (c *Client) InRoom() bool {
	return c.RoomOwner != ""
}

// ClientRegistry owns the mapping from connection identity to client
// state. It is not safe for concurrent use: all access happens on the
// hub goroutine.
type ClientRegistry struct {
	clients map[string]*Client
}

// NewClientRegistry constructs an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]*Client)}
}

// Register inserts a new record. A duplicate identity is an internal
// consistency fault and is refused.
func (r *ClientRegistry) Register(c *Client) error {
	if _, exists := r.clients[c.ID]; exists {
		return ErrIdentityTaken
	}
	r.clients[c.ID] = c
	return nil
}

// Rename overwrites the display name. Display names need not be unique.
// Returns false if the identity is unknown.
func (r *ClientRegistry) Rename(id, name string) bool {
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	c.Name = name
	return true
}

// Get looks up a client by identity.
func (r *ClientRegistry) Get(id string) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Remove deletes the record. Removing an unknown identity is a no-op.
// Callers must run the room cascade before removing the client.
func (r *ClientRegistry) Remove(id string) {
	delete(r.clients, id)
}

// Len reports the number of connected clients.
func (r *ClientRegistry) Len() int {
	return len(r.clients)
}

// All returns a snapshot of every connected client.
func (r *ClientRegistry) All() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}
