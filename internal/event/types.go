package event

const (
	EventPlayerJoin  = "player.join"
	EventPlayerMove  = "player.move"
	EventPlayerQuit  = "player.quit"
	EventWorldLoad   = "world.load"
	EventWorldUnload = "world.unload"
)
