// roomctl/screen.go
package roomctl

// Screen is the visible surface derived from session presence and the
// snapshot phase. The derivation is identical across all seven games; only
// the per-phase action gating differs.
type Screen int

const (
	// ScreenNotConfigured shows backend setup instructions.
	ScreenNotConfigured Screen = iota
	// ScreenNoRoom shows the create form and the manual join form.
	ScreenNoRoom
	// ScreenJoinPrompt shows the join form pre-filled with the room code.
	ScreenJoinPrompt
	// ScreenLobby shows the player list and the start-round control.
	ScreenLobby
	// ScreenActiveRound renders the phase-specific board.
	ScreenActiveRound
	// ScreenRevealedRound renders the round outcome.
	ScreenRevealedRound
)

func (s Screen) String() string {
	switch s {
	case ScreenNotConfigured:
		return "not-configured"
	case ScreenNoRoom:
		return "no-room"
	case ScreenJoinPrompt:
		return "join-prompt"
	case ScreenLobby:
		return "lobby"
	case ScreenActiveRound:
		return "active-round"
	case ScreenRevealedRound:
		return "revealed-round"
	}
	return "unknown"
}

// Screen derives the current surface. It is a pure function of the
// controller's synchronized state and performs no I/O.
func (c *Controller[S]) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.configured {
		return ScreenNotConfigured
	}
	if c.roomCode == "" {
		return ScreenNoRoom
	}
	if c.session == nil {
		return ScreenJoinPrompt
	}
	if !c.hasSnapshot {
		return ScreenLobby
	}

	round := c.snapshot.Round()
	switch {
	case !round.Present:
		return ScreenLobby
	case round.Terminal:
		return ScreenRevealedRound
	default:
		return ScreenActiveRound
	}
}
