package event

import (
	"github.com/google/uuid"

	"github.com/Versifine/spawnpoint/internal/world"
)

// PlayerJoinEvent fires once the player's session is registered, before
// their first tick.
type PlayerJoinEvent struct {
	PlayerID uuid.UUID
	Name     string
	// FirstJoin is true when the server has never seen this player before.
	FirstJoin bool
}

// PlayerMoveEvent fires after the player's position changed from From to To.
type PlayerMoveEvent struct {
	PlayerID uuid.UUID
	From     world.Location
	To       world.Location
}

type PlayerQuitEvent struct {
	PlayerID uuid.UUID
	Name     string
}

type WorldEvent struct {
	Name string
}

func NewPlayerJoinEvent(id uuid.UUID, name string, firstJoin bool) *PlayerJoinEvent {
	return &PlayerJoinEvent{PlayerID: id, Name: name, FirstJoin: firstJoin}
}

func NewPlayerMoveEvent(id uuid.UUID, from, to world.Location) *PlayerMoveEvent {
	return &PlayerMoveEvent{PlayerID: id, From: from, To: to}
}

func NewPlayerQuitEvent(id uuid.UUID, name string) *PlayerQuitEvent {
	return &PlayerQuitEvent{PlayerID: id, Name: name}
}
