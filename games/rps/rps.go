// games/rps/rps.go
package rps

import (
	"context"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

const Slug = "rps"

// Exactly two players face off; the round resolves once both have
// submitted.
const RequiredPlayers = 2

type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

var Choices = []Choice{Rock, Paper, Scissors}

const (
	RoundPending  = "pending"
	RoundRevealed = "revealed"
)

type RevealedMove struct {
	Choice   Choice `json:"choice"`
	Nickname string `json:"nickname"`
	PlayerID string `json:"playerId"`
}

type Round struct {
	ID                 string         `json:"id"`
	RevealedMoves      []RevealedMove `json:"revealedMoves"`
	RoundNumber        int            `json:"roundNumber"`
	Status             string         `json:"status"`
	SubmittedCount     int            `json:"submittedCount"`
	SubmittedPlayerIDs []string       `json:"submittedPlayerIds"`
	WinnerNickname     string         `json:"winnerNickname"`
	WinnerPlayerID     string         `json:"winnerPlayerId"`
}

type Snapshot struct {
	games.RoomHeader
	CurrentRound Round `json:"currentRound"`
}

func (s *Snapshot) Round() games.RoundRef {
	return games.RoundRef{
		ID:       s.CurrentRound.ID,
		Status:   s.CurrentRound.Status,
		Number:   s.CurrentRound.RoundNumber,
		Present:  s.CurrentRound.ID != "",
		Terminal: s.CurrentRound.Status == RoundRevealed,
	}
}

func Profile() games.Profile {
	return games.Profile{
		Slug:         Slug,
		Title:        "Piedra, papel o tijera",
		MinPlayers:   RequiredPlayers,
		RevealDialog: true,
		Tables:       []string{"room_players", "rps_rounds"},
		RPC: games.RPCNames{
			Create:   "create_rps_room",
			Join:     "join_rps_room",
			Snapshot: "get_rps_room_snapshot",
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
	err := c.gw.Call(ctx, "create_rps_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_rps_room", map[string]any{
		"player_nickname": strings.TrimSpace(nickname),
		"room_code_input": games.NormalizeRoomCode(roomCode),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) FetchSnapshot(ctx context.Context, roomCode string) (*Snapshot, error) {
	var snap Snapshot
	err := c.gw.Call(ctx, "get_rps_room_snapshot", map[string]any{
		"room_code_input": games.NormalizeRoomCode(roomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SubmitMove(ctx context.Context, sess *games.Session, choice Choice) error {
	return c.gw.Call(ctx, "submit_rps_move", map[string]any{
		"player_choice":       string(choice),
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) StartNextRound(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "start_next_rps_round", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

// Actions binds the client's remote calls for the generic controller.
func (c *Client) Actions() roomctl.Actions[*Snapshot] {
	return roomctl.Actions[*Snapshot]{
		Create: c.CreateRoom,
		Join:   c.JoinRoom,
		Fetch: func(ctx context.Context, _ *games.Session, roomCode string) (*Snapshot, error) {
			return c.FetchSnapshot(ctx, roomCode)
		},
	}
}

// AlreadySubmitted reports whether the session's player has a move in the
// current round.
func AlreadySubmitted(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil {
		return false
	}
	for _, id := range snap.CurrentRound.SubmittedPlayerIDs {
		if id == sess.PlayerID {
			return true
		}
	}
	return false
}

// CanPlay gates the move buttons: both seats filled, round pending and no
// move submitted yet. Submission is simultaneous; there is no turn order.
func CanPlay(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.NumPlayers == RequiredPlayers &&
		snap.CurrentRound.Status == RoundPending &&
		!AlreadySubmitted(sess, snap)
}

// CanStartNextRound gates the next-round trigger on the revealed state.
func CanStartNextRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.NumPlayers == RequiredPlayers &&
		snap.CurrentRound.Status == RoundRevealed
}
