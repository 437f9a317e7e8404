// games/spot/spot.go
package spot

import (
	"context"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

// Social voting game: each round shows a prompt and everybody votes for
// the friend it fits best. Open-ended scoring, rounds keep going for as
// long as the group wants.
const Slug = "spot"

const MinPlayers = 3

const (
	RoundPending  = "pending"
	RoundRevealed = "revealed"
)

type Prompt struct {
	Category string `json:"category,omitempty"`
	ID       string `json:"id"`
	Text     string `json:"text"`
}

type WonPrompt struct {
	PromptID    string `json:"promptId"`
	PromptText  string `json:"promptText"`
	RoundNumber int    `json:"roundNumber"`
}

type Player struct {
	games.Player
	WonPrompts []WonPrompt `json:"wonPrompts"`
}

type RevealedVote struct {
	TargetNickname string `json:"targetNickname"`
	TargetPlayerID string `json:"targetPlayerId"`
	VoterNickname  string `json:"voterNickname"`
	VoterPlayerID  string `json:"voterPlayerId"`
}

type Round struct {
	ID                     string         `json:"id"`
	ParticipantCount       int            `json:"participantCount"`
	ParticipantPlayerIDs   []string       `json:"participantPlayerIds"`
	PromptID               string         `json:"promptId"`
	PromptText             string         `json:"promptText"`
	RevealedVotes          []RevealedVote `json:"revealedVotes"`
	RoundNumber            int            `json:"roundNumber"`
	SelfVoteTargetPlayerID string         `json:"selfVoteTargetPlayerId"`
	Status                 string         `json:"status"`
	SubmittedCount         int            `json:"submittedCount"`
	SubmittedPlayerIDs     []string       `json:"submittedPlayerIds"`
	TiedNicknames          []string       `json:"tiedNicknames"`
	TiedPlayerIDs          []string       `json:"tiedPlayerIds"`
	WinnerNickname         string         `json:"winnerNickname"`
	WinnerPlayerID         string         `json:"winnerPlayerId"`
	WinningVoteCount       int            `json:"winningVoteCount"`
}

type Snapshot struct {
	games.RoomHeader
	CurrentRound  *Round   `json:"currentRound"`
	SpotPlayers   []Player `json:"players"`
	UsedPromptIDs []string `json:"usedPromptIds"`
}

// RoomPlayers overrides the header's list, which loses the game-specific
// fields to the shallower SpotPlayers decode.
func (s *Snapshot) RoomPlayers() []games.Player {
	out := make([]games.Player, 0, len(s.SpotPlayers))
	for _, p := range s.SpotPlayers {
		out = append(out, p.Player)
	}
	return out
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

func Profile() games.Profile {
	return games.Profile{
		Slug:             Slug,
		Title:            "Amigos suyos",
		MinPlayers:       MinPlayers,
		IdentitySnapshot: true,
		RevealDialog:     true,
		Tables:           []string{"room_players", "spot_rounds"},
		RPC: games.RPCNames{
			Create:   "create_spot_room",
			Join:     "join_spot_room",
			Snapshot: "get_spot_room_snapshot",
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
	err := c.gw.Call(ctx, "create_spot_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_spot_room", map[string]any{
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
	err := c.gw.Call(ctx, "get_spot_room_snapshot", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     games.NormalizeRoomCode(sess.RoomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// StartRound opens the next round with the given prompt. The prompt text
// travels with the call so the backend stays content-agnostic.
func (c *Client) StartRound(ctx context.Context, sess *games.Session, prompt Prompt) error {
	return c.gw.Call(ctx, "start_next_spot_round", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"prompt_id_input":     prompt.ID,
		"prompt_text_input":   prompt.Text,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) SubmitVote(ctx context.Context, sess *games.Session, targetPlayerID string) error {
	return c.gw.Call(ctx, "submit_spot_vote", map[string]any{
		"player_id_input":        sess.PlayerID,
		"player_secret_input":    sess.PlayerSecret,
		"room_code_input":        sess.RoomCode,
		"target_player_id_input": targetPlayerID,
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

// IsParticipant reports whether the viewer is part of the current round.
// Players who join mid-round spectate until the next one starts.
func IsParticipant(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentRound == nil {
		return false
	}
	for _, id := range snap.CurrentRound.ParticipantPlayerIDs {
		if id == sess.PlayerID {
			return true
		}
	}
	return false
}

// CanStartRound gates opening a round: enough players and no round still
// pending. promptsReady reflects whether the prompt deck loaded.
func CanStartRound(sess *games.Session, snap *Snapshot, promptsReady bool) bool {
	return sess != nil && snap != nil && promptsReady &&
		snap.NumPlayers >= MinPlayers &&
		(snap.CurrentRound == nil || snap.CurrentRound.Status == RoundRevealed)
}

// CanVote gates voting: pending round and the viewer is a participant.
func CanVote(sess *games.Session, snap *Snapshot) bool {
	return IsParticipant(sess, snap) &&
		snap.CurrentRound.Status == RoundPending
}
