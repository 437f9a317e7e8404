// games/bj/bj.go
package bj

import (
	"context"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

const Slug = "bj"

const MinPlayers = 2

type Action string

const (
	Hit   Action = "hit"
	Stand Action = "stand"
)

// Round statuses. Only revealed is terminal; the dealer turn is an
// intermediate state driven entirely by the backend.
const (
	RoundPlayerTurn = "player_turn"
	RoundDealerTurn = "dealer_turn"
	RoundRevealed   = "revealed"
)

const (
	HandActive    = "active"
	HandStood     = "stood"
	HandBust      = "bust"
	HandBlackjack = "blackjack"
)

type Hand struct {
	Cards      []string `json:"cards"`
	Nickname   string   `json:"nickname"`
	Outcome    string   `json:"outcome"`
	PlayerID   string   `json:"playerId"`
	Total      int      `json:"total"`
	TurnStatus string   `json:"turnStatus"`
}

type Round struct {
	ActivePlayerCount int      `json:"activePlayerCount"`
	DealerCards       []string `json:"dealerCards"`
	DealerTotal       int      `json:"dealerTotal"`
	ID                string   `json:"id"`
	PlayerHands       []Hand   `json:"playerHands"`
	RoundNumber       int      `json:"roundNumber"`
	Status            string   `json:"status"`
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

// OwnHand returns the viewing player's hand in the current round.
func (s *Snapshot) OwnHand(sess *games.Session) *Hand {
	if sess == nil || s == nil || s.CurrentRound == nil {
		return nil
	}
	for i := range s.CurrentRound.PlayerHands {
		if s.CurrentRound.PlayerHands[i].PlayerID == sess.PlayerID {
			return &s.CurrentRound.PlayerHands[i]
		}
	}
	return nil
}

func Profile() games.Profile {
	return games.Profile{
		Slug:         Slug,
		Title:        "Blackjack",
		MinPlayers:   MinPlayers,
		RevealDialog: true,
		Tables:       []string{"room_players", "bj_rounds", "bj_player_hands"},
		RPC: games.RPCNames{
			Create:   "create_bj_room",
			Join:     "join_bj_room",
			Snapshot: "get_bj_room_snapshot",
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
	err := c.gw.Call(ctx, "create_bj_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_bj_room", map[string]any{
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
	err := c.gw.Call(ctx, "get_bj_room_snapshot", map[string]any{
		"room_code_input": games.NormalizeRoomCode(roomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SubmitAction(ctx context.Context, sess *games.Session, action Action) error {
	return c.gw.Call(ctx, "submit_bj_action", map[string]any{
		"action_input":        string(action),
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) StartNextRound(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "start_next_bj_round", map[string]any{
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

// CanPlay gates hit/stand on the table being in the player phase with the
// viewer's own hand still active.
func CanPlay(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentRound == nil {
		return false
	}
	hand := snap.OwnHand(sess)
	return snap.CurrentRound.Status == RoundPlayerTurn &&
		hand != nil && hand.TurnStatus == HandActive
}

// CanStartRound gates dealing the first round.
func CanStartRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.CurrentRound == nil &&
		snap.NumPlayers >= MinPlayers
}

func CanStartNextRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.CurrentRound != nil &&
		snap.CurrentRound.Status == RoundRevealed &&
		snap.NumPlayers >= MinPlayers
}
