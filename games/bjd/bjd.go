// games/bjd/bjd.go
package bjd

import (
	"context"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

// Blackjack duel: two players, hands hidden from each other until the
// final reveal. The snapshot call therefore requires the caller's
// identity so the backend can redact the opponent's cards.
const Slug = "bjd"

const RequiredPlayers = 2

type Action string

const (
	Hit   Action = "hit"
	Stand Action = "stand"
)

const (
	RoundPending  = "pending"
	RoundRevealed = "revealed"
)

const (
	HandActive    = "active"
	HandStood     = "stood"
	HandBust      = "bust"
	HandBlackjack = "blackjack"
)

type Hand struct {
	CardCount  int      `json:"cardCount"`
	Cards      []string `json:"cards"`
	IsSelf     bool     `json:"isSelf"`
	Nickname   string   `json:"nickname"`
	Outcome    string   `json:"outcome"`
	PlayerID   string   `json:"playerId"`
	Revealed   bool     `json:"revealed"`
	Total      int      `json:"total"`
	TurnStatus string   `json:"turnStatus"`
}

type Round struct {
	ActivePlayerCount int    `json:"activePlayerCount"`
	ID                string `json:"id"`
	PlayerHands       []Hand `json:"playerHands"`
	RoundNumber       int    `json:"roundNumber"`
	Status            string `json:"status"`
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

// SelfHand returns the viewer's own hand; the backend marks it isSelf.
func (s *Snapshot) SelfHand() *Hand {
	if s == nil || s.CurrentRound == nil {
		return nil
	}
	for i := range s.CurrentRound.PlayerHands {
		if s.CurrentRound.PlayerHands[i].IsSelf {
			return &s.CurrentRound.PlayerHands[i]
		}
	}
	return nil
}

// OpponentHand returns the redacted opposing hand.
func (s *Snapshot) OpponentHand() *Hand {
	if s == nil || s.CurrentRound == nil {
		return nil
	}
	for i := range s.CurrentRound.PlayerHands {
		if !s.CurrentRound.PlayerHands[i].IsSelf {
			return &s.CurrentRound.PlayerHands[i]
		}
	}
	return nil
}

func Profile() games.Profile {
	return games.Profile{
		Slug:             Slug,
		Title:            "Blackjack duelo",
		MinPlayers:       RequiredPlayers,
		IdentitySnapshot: true,
		RevealDialog:     true,
		Tables:           []string{"room_players"},
		RPC: games.RPCNames{
			Create:   "create_bjd_room",
			Join:     "join_bjd_room",
			Snapshot: "get_bjd_room_snapshot",
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
	err := c.gw.Call(ctx, "create_bjd_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_bjd_room", map[string]any{
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
	err := c.gw.Call(ctx, "get_bjd_room_snapshot", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     games.NormalizeRoomCode(sess.RoomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SubmitAction(ctx context.Context, sess *games.Session, action Action) error {
	return c.gw.Call(ctx, "submit_bjd_action", map[string]any{
		"action_input":        string(action),
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) StartNextRound(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "start_next_bjd_round", map[string]any{
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

// CanPlay gates hit/stand: the duel is simultaneous, so the only turn
// gate is the viewer's own hand still being active.
func CanPlay(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentRound == nil {
		return false
	}
	hand := snap.SelfHand()
	return snap.CurrentRound.Status == RoundPending &&
		hand != nil && hand.TurnStatus == HandActive
}

func CanStartRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.CurrentRound == nil &&
		snap.NumPlayers == RequiredPlayers
}

func CanStartNextRound(sess *games.Session, snap *Snapshot) bool {
	return sess != nil && snap != nil &&
		snap.CurrentRound != nil &&
		snap.CurrentRound.Status == RoundRevealed &&
		snap.NumPlayers == RequiredPlayers
}
