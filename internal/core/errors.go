package core

import "errors"

var (
	// ErrIdentityTaken means a connect produced an identity that already
	// exists. Identities are generated fresh, so this is an internal
	// consistency fault, not a client error.
	ErrIdentityTaken = errors.New("identity already registered")

	// ErrAlreadyOwnsRoom rejects a second create_room from the same owner.
	ErrAlreadyOwnsRoom = errors.New("client already owns a room")

	// ErrNoSuchCode rejects a join with a code no live room carries.
	ErrNoSuchCode = errors.New("no room with that code")

	// ErrHubClosed is returned for queries after the hub loop has stopped.
	ErrHubClosed = errors.New("hub is closed")
)
