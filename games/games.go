// games/games.go
package games

import (
	"net/url"
	"strings"
)

// RoomCodeLength is the canonical length of a room code.
const RoomCodeLength = 6

// RoomStatus is the lifecycle status of a room as reported by the backend.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// Session is the anonymous per-room identity issued by the backend when a
// player creates or joins a room. The secret is only ever sent back to the
// backend as a credential on later calls. Sessions are immutable once
// created.
type Session struct {
	Nickname     string `json:"nickname"`
	PlayerID     string `json:"playerId"`
	PlayerSecret string `json:"playerSecret"`
	RoomCode     string `json:"roomCode"`
}

// Player is the common shape of a room member across all games. Fields
// that only some games report (score, lives, elimination) stay at their
// zero value elsewhere.
type Player struct {
	ID             string `json:"id"`
	Nickname       string `json:"nickname"`
	IsHost         bool   `json:"isHost"`
	JoinedAt       string `json:"joinedAt"`
	Score          int    `json:"score"`
	LivesRemaining int    `json:"livesRemaining"`
	IsEliminated   bool   `json:"isEliminated"`
	IsInMatch      bool   `json:"isInMatch"`
}

// RoundRef is the game-independent view of the current round or match:
// just enough for the sync layer to drive screens and reveal handling.
type RoundRef struct {
	ID       string
	Status   string
	Number   int
	Present  bool
	Terminal bool
}

// Snapshot is implemented by every game's snapshot type. A snapshot is the
// only source of truth for shared state; it fully replaces its predecessor
// on every fetch.
type Snapshot interface {
	RoomID() string
	RoomCode() string
	Status() RoomStatus
	PlayerCount() int
	RoomPlayers() []Player
	Round() RoundRef
}

// RoomHeader is the game-independent top of every snapshot. Game snapshot
// types embed it and add their own round substructure.
type RoomHeader struct {
	CreatedAt  string     `json:"createdAt"`
	GameSlug   string     `json:"gameSlug"`
	NumPlayers int        `json:"playerCount"`
	Players    []Player   `json:"players"`
	Code       string     `json:"roomCode"`
	ID         string     `json:"roomId"`
	State      RoomStatus `json:"roomStatus"`
}

func (h *RoomHeader) RoomID() string        { return h.ID }
func (h *RoomHeader) RoomCode() string      { return h.Code }
func (h *RoomHeader) Status() RoomStatus    { return h.State }
func (h *RoomHeader) PlayerCount() int      { return h.NumPlayers }
func (h *RoomHeader) RoomPlayers() []Player { return h.Players }

// RPCNames holds the backend procedure names shared by every game. The
// game-specific actions (moves, votes, challenges) live on each game's
// client instead.
type RPCNames struct {
	Create   string
	Join     string
	Snapshot string
}

// Profile parameterizes the generic room controller for one game.
type Profile struct {
	Slug       string
	Title      string
	MinPlayers int

	// HostGatedStart marks games where starting or advancing a match is
	// reserved to the host.
	HostGatedStart bool

	// IdentitySnapshot marks games whose snapshot call requires the
	// caller's credentials so the backend can redact hidden information
	// per viewer.
	IdentitySnapshot bool

	// RevealDialog controls whether terminal rounds surface a one-shot
	// reveal event. The impostor game renders its phases inline and keeps
	// this off.
	RevealDialog bool

	// Tables lists the per-room child tables watched for change
	// notifications, in addition to the room row itself.
	Tables []string

	RPC RPCNames
}

// NormalizeRoomCode strips non-alphanumerics, upper-cases and truncates to
// the canonical six characters. "ab-12 cd!!" becomes "AB12CD".
func NormalizeRoomCode(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
		if b.Len() == RoomCodeLength {
			break
		}
	}
	return b.String()
}

// ShareURL builds the join link for a room: {base}/{slug}/?room={code}.
func ShareURL(base, slug, roomCode string) string {
	u := strings.TrimRight(base, "/") + "/" + slug + "/"
	return u + "?room=" + url.QueryEscape(roomCode)
}

// FindPlayer returns the player with the given id, if present.
func FindPlayer(players []Player, id string) (Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// IsHost reports whether the session's player holds the host flag in the
// given player list.
func IsHost(players []Player, sess *Session) bool {
	if sess == nil {
		return false
	}
	p, ok := FindPlayer(players, sess.PlayerID)
	return ok && p.IsHost
}
