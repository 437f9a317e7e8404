// games/bb/bb.go
package bb

import (
	"context"
	"errors"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

// Bluff Battle: players claim to drop cards of the target color; the next
// player may challenge the claim. Three lives each, last player standing
// wins. All resolution happens in the backend.
const Slug = "bb"

const MinPlayers = 2

// ErrNoCardsSelected is raised before the play call when the selection is
// empty.
var ErrNoCardsSelected = errors.New("select at least one card to play")

type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
)

const (
	RoundPending  = "pending"
	RoundRevealed = "revealed"
)

type HandView struct {
	CardCount int      `json:"cardCount"`
	Cards     []string `json:"cards"`
	IsSelf    bool     `json:"isSelf"`
	Nickname  string   `json:"nickname"`
	PlayerID  string   `json:"playerId"`
}

type Round struct {
	ChallengeResult        string     `json:"challengeResult"`
	ChallengerNickname     string     `json:"challengerNickname"`
	CurrentPlayerID        string     `json:"currentPlayerId"`
	CurrentPlayerNickname  string     `json:"currentPlayerNickname"`
	HandCards              []Color    `json:"handCards"`
	Hands                  []HandView `json:"hands"`
	ID                     string     `json:"id"`
	LastPlayCount          int        `json:"lastPlayCount"`
	LastPlayPlayerID       string     `json:"lastPlayPlayerId"`
	LastPlayPlayerNickname string     `json:"lastPlayPlayerNickname"`
	LoserNickname          string     `json:"loserNickname"`
	LoserPlayerID          string     `json:"loserPlayerId"`
	PileCount              int        `json:"pileCount"`
	RevealedCards          []Color    `json:"revealedCards"`
	RoundNumber            int        `json:"roundNumber"`
	Status                 string     `json:"status"`
	TargetColor            Color      `json:"targetColor"`
	WinnerNickname         string     `json:"winnerNickname"`
}

type Snapshot struct {
	games.RoomHeader
	CurrentRound *Round `json:"currentRound"`
}

func (s *Snapshot) Round() games.RoundRef {
	if s.CurrentRound == nil {
		return games.RoundRef{}
	}
	return games.RoundRef{
		ID:       s.CurrentRound.ID,
		Status:   s.CurrentRound.Status,
		Number:   s.CurrentRound.RoundNumber,
		Present:  true,
		Terminal: s.CurrentRound.Status == RoundRevealed,
	}
}

// AlivePlayers filters out eliminated players.
func (s *Snapshot) AlivePlayers() []games.Player {
	var alive []games.Player
	for _, p := range s.Players {
		if !p.IsEliminated {
			alive = append(alive, p)
		}
	}
	return alive
}

func Profile() games.Profile {
	return games.Profile{
		Slug:             Slug,
		Title:            "Bluff Battle",
		MinPlayers:       MinPlayers,
		IdentitySnapshot: true,
		RevealDialog:     true,
		Tables:           []string{"room_players"},
		RPC: games.RPCNames{
			Create:   "create_bb_room",
			Join:     "join_bb_room",
			Snapshot: "get_bb_room_snapshot",
		},
	}
}

type Client struct {
	gw *gateway.Client
}

func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

func (c *Client) CreateRoom(ctx context.Context, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "create_bb_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_bb_room", map[string]any{
		"player_nickname": strings.TrimSpace(nickname),
		"room_code_input": games.NormalizeRoomCode(roomCode),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) FetchSnapshot(ctx context.Context, sess *games.Session) (*Snapshot, error) {
	var snap Snapshot
	err := c.gw.Call(ctx, "get_bb_room_snapshot", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     games.NormalizeRoomCode(sess.RoomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// PlayCards claims the selected hand cards as the target color. The
// selection is validated before any network traffic.
func (c *Client) PlayCards(ctx context.Context, sess *games.Session, cardIndexes []int) error {
	if len(cardIndexes) == 0 {
		return ErrNoCardsSelected
	}
	return c.gw.Call(ctx, "play_bb_cards", map[string]any{
		"card_indexes_input":  cardIndexes,
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

// Challenge disputes the previous player's claim.
func (c *Client) Challenge(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "challenge_bb_play", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) StartNextRound(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "start_next_bb_round", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) Actions() roomctl.Actions[*Snapshot] {
	return roomctl.Actions[*Snapshot]{
		Create: c.CreateRoom,
		Join:   c.JoinRoom,
		Fetch: func(ctx context.Context, sess *games.Session, _ string) (*Snapshot, error) {
			return c.FetchSnapshot(ctx, sess)
		},
	}
}

// IsCurrentPlayer reports whether the table is waiting on the viewer.
func IsCurrentPlayer(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil && snap.CurrentRound != nil &&
		snap.CurrentRound.CurrentPlayerID == sess.PlayerID
}

// CanPlay gates playing cards: pending round, viewer's turn, cards left in
// hand. Eliminated players never become the current player, so no extra
// check is needed here.
func CanPlay(sess *games.Session, snap *Snapshot) bool {
	return IsCurrentPlayer(sess, snap) &&
		snap.CurrentRound.Status == RoundPending &&
		len(snap.CurrentRound.HandCards) > 0
}

// CanChallenge gates the challenge: the viewer is on turn and somebody
// else made the last play.
func CanChallenge(sess *games.Session, snap *Snapshot) bool {
	return IsCurrentPlayer(sess, snap) &&
		snap.CurrentRound.Status == RoundPending &&
		snap.CurrentRound.LastPlayPlayerID != "" &&
		snap.CurrentRound.LastPlayPlayerID != sess.PlayerID
}

// CanStartFirstRound gates dealing the opening round.
func CanStartFirstRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.CurrentRound == nil &&
		snap.NumPlayers >= MinPlayers &&
		snap.State == games.RoomWaiting
}

// CanStartNextRound gates the next round after a reveal, until the match
// has a single survivor.
func CanStartNextRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.CurrentRound != nil &&
		snap.CurrentRound.Status == RoundRevealed &&
		snap.State != games.RoomFinished
}
