// games/ttt/ttt.go
package ttt

import (
	"context"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

const Slug = "ttt"

const RequiredPlayers = 2

// BoardCells is the fixed 3x3 grid size.
const BoardCells = 9

const (
	RoundPending  = "pending"
	RoundRevealed = "revealed"
)

type Round struct {
	Board              []string `json:"board"`
	ID                 string   `json:"id"`
	MoveCount          int      `json:"moveCount"`
	NextPlayerID       string   `json:"nextPlayerId"`
	NextPlayerNickname string   `json:"nextPlayerNickname"`
	RoundNumber        int      `json:"roundNumber"`
	StartingPlayerID   string   `json:"startingPlayerId"`
	Status             string   `json:"status"`
	WinnerNickname     string   `json:"winnerNickname"`
	WinnerPlayerID     string   `json:"winnerPlayerId"`
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
		Title:        "Tic tac toe",
		MinPlayers:   RequiredPlayers,
		RevealDialog: true,
		Tables:       []string{"room_players", "ttt_rounds"},
		RPC: games.RPCNames{
			Create:   "create_ttt_room",
			Join:     "join_ttt_room",
			Snapshot: "get_ttt_room_snapshot",
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
	err := c.gw.Call(ctx, "create_ttt_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_ttt_room", map[string]any{
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
	err := c.gw.Call(ctx, "get_ttt_room_snapshot", map[string]any{
		"room_code_input": games.NormalizeRoomCode(roomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SubmitMove(ctx context.Context, sess *games.Session, cellIndex int) error {
	return c.gw.Call(ctx, "submit_ttt_move", map[string]any{
		"cell_index_input":    cellIndex,
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) StartNextRound(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "start_next_ttt_round", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) Actions() roomctl.Actions[*Snapshot] {
	return roomctl.Actions[*Snapshot]{
		Create: c.CreateRoom,
		Join:   c.JoinRoom,
		Fetch: func(ctx context.Context, _ *games.Session, roomCode string) (*Snapshot, error) {
			return c.FetchSnapshot(ctx, roomCode)
		},
	}
}

// CanPlay gates a move on the turn order: the round must be pending and
// the board waiting on the session's player.
func CanPlay(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.NumPlayers == RequiredPlayers &&
		snap.CurrentRound.Status == RoundPending &&
		snap.CurrentRound.NextPlayerID == sess.PlayerID
}

func CanStartNextRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.NumPlayers == RequiredPlayers &&
		snap.CurrentRound.Status == RoundRevealed
}
