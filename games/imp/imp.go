// games/imp/imp.go
package imp

import (
	"context"
	"strings"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/roomctl"
)

// Impostor word game: everyone but the impostor gets the secret word,
// clues go around in turn order, then the table votes. The backend deals
// roles and words, so the snapshot call requires the caller's identity
// and only ever returns the caller's own role.
const Slug = "imp"

const MinPlayers = 3

type Phase string

const (
	PhaseClue     Phase = "clue"
	PhaseVote     Phase = "vote"
	PhaseRevealed Phase = "revealed"
	PhaseFinished Phase = "finished"
)

type Role string

const (
	Civilian Role = "civilian"
	Impostor Role = "impostor"
)

type Team string

const (
	TeamCrew     Team = "crew"
	TeamImpostor Team = "impostor"
)

// Category is one entry from the impostor word deck. Decks ship as
// static content; the backend only sees the category the host picked.
type Category struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Words []string `json:"words"`
}

type Clue struct {
	ClueText  string `json:"clueText"`
	Nickname  string `json:"nickname"`
	PlayerID  string `json:"playerId"`
	TurnIndex int    `json:"turnIndex"`
}

type RevealedVote struct {
	TargetNickname string `json:"targetNickname"`
	TargetPlayerID string `json:"targetPlayerId"`
	VoterNickname  string `json:"voterNickname"`
	VoterPlayerID  string `json:"voterPlayerId"`
}

type Match struct {
	ActivePlayerCount      int            `json:"activePlayerCount"`
	CategoryID             string         `json:"categoryId"`
	CategoryLabel          string         `json:"categoryLabel"`
	Clues                  []Clue         `json:"clues"`
	CurrentTurnNickname    string         `json:"currentTurnNickname"`
	CurrentTurnPlayerID    string         `json:"currentTurnPlayerId"`
	EliminatedNickname     string         `json:"eliminatedNickname"`
	EliminatedPlayerID     string         `json:"eliminatedPlayerId"`
	ID                     string         `json:"id"`
	ImpostorNickname       string         `json:"impostorNickname"`
	ImpostorPlayerID       string         `json:"impostorPlayerId"`
	MatchNumber            int            `json:"matchNumber"`
	ParticipantPlayerIDs   []string       `json:"participantPlayerIds"`
	Phase                  Phase          `json:"phase"`
	RevealedVotes          []RevealedVote `json:"revealedVotes"`
	RevealedWord           string         `json:"revealedWord"`
	RoundNumber            int            `json:"roundNumber"`
	SelfRole               Role           `json:"selfRole"`
	SelfVoteTargetPlayerID string         `json:"selfVoteTargetPlayerId"`
	SelfWord               string         `json:"selfWord"`
	SubmittedCluePlayerIDs []string       `json:"submittedCluePlayerIds"`
	SubmittedVotePlayerIDs []string       `json:"submittedVotePlayerIds"`
	TurnOrderPlayerIDs     []string       `json:"turnOrderPlayerIds"`
	VoteTiedNicknames      []string       `json:"voteTiedNicknames"`
	VoteTiedPlayerIDs      []string       `json:"voteTiedPlayerIds"`
	WinnerTeam             Team           `json:"winnerTeam"`
}

type Snapshot struct {
	games.RoomHeader
	CurrentMatch *Match `json:"currentMatch"`
}

func (s *Snapshot) Round() games.RoundRef {
	if s.CurrentMatch == nil {
		return games.RoundRef{}
	}
	m := s.CurrentMatch
	return games.RoundRef{
		ID:       m.ID,
		Status:   string(m.Phase),
		Number:   m.RoundNumber,
		Present:  true,
		Terminal: m.Phase == PhaseRevealed || m.Phase == PhaseFinished,
	}
}

// SelfPlayer returns the viewer's room entry.
func (s *Snapshot) SelfPlayer(sess *games.Session) (games.Player, bool) {
	if sess == nil || s == nil {
		return games.Player{}, false
	}
	return games.FindPlayer(s.Players, sess.PlayerID)
}

// Participants lists players dealt into the current match. Players who
// joined after the deal spectate until the next match.
func (s *Snapshot) Participants() []games.Player {
	var in []games.Player
	for _, p := range s.Players {
		if p.IsInMatch {
			in = append(in, p)
		}
	}
	return in
}

// TurnOrder resolves turnOrderPlayerIds against the player list.
func (s *Snapshot) TurnOrder() []games.Player {
	if s.CurrentMatch == nil {
		return nil
	}
	var ordered []games.Player
	for _, id := range s.CurrentMatch.TurnOrderPlayerIDs {
		if p, ok := games.FindPlayer(s.Players, id); ok && p.IsInMatch {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func Profile() games.Profile {
	return games.Profile{
		Slug:             Slug,
		Title:            "Impostor",
		MinPlayers:       MinPlayers,
		HostGatedStart:   true,
		IdentitySnapshot: true,
		RevealDialog:     false,
		Tables:           []string{"room_players", "imp_matches"},
		RPC: games.RPCNames{
			Create:   "create_imp_room",
			Join:     "join_imp_room",
			Snapshot: "get_imp_room_snapshot",
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
	err := c.gw.Call(ctx, "create_imp_room", map[string]any{
		"host_nickname": strings.TrimSpace(nickname),
	}, &sess)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSession(sess)
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
	var sess games.Session
	err := c.gw.Call(ctx, "join_imp_room", map[string]any{
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
	err := c.gw.Call(ctx, "get_imp_room_snapshot", map[string]any{
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     games.NormalizeRoomCode(sess.RoomCode),
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// StartMatch deals a new match from the chosen category. The word list
// travels with the call so the backend stays content-agnostic.
func (c *Client) StartMatch(ctx context.Context, sess *games.Session, category Category) error {
	return c.gw.Call(ctx, "start_imp_match", map[string]any{
		"category_id_input":    category.ID,
		"category_label_input": category.Label,
		"category_words_input": category.Words,
		"player_id_input":      sess.PlayerID,
		"player_secret_input":  sess.PlayerSecret,
		"room_code_input":      sess.RoomCode,
	}, nil)
}

func (c *Client) SubmitClue(ctx context.Context, sess *games.Session, clueText string) error {
	return c.gw.Call(ctx, "submit_imp_clue", map[string]any{
		"clue_text_input":     clueText,
		"player_id_input":     sess.PlayerID,
		"player_secret_input": sess.PlayerSecret,
		"room_code_input":     sess.RoomCode,
	}, nil)
}

func (c *Client) SubmitVote(ctx context.Context, sess *games.Session, targetPlayerID string) error {
	return c.gw.Call(ctx, "submit_imp_vote", map[string]any{
		"player_id_input":        sess.PlayerID,
		"player_secret_input":    sess.PlayerSecret,
		"room_code_input":        sess.RoomCode,
		"target_player_id_input": targetPlayerID,
	}, nil)
}

// AdvanceRound moves a revealed match into its next clue round, or ends
// it when the backend decides the match is over.
func (c *Client) AdvanceRound(ctx context.Context, sess *games.Session) error {
	return c.gw.Call(ctx, "advance_imp_round", map[string]any{
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

// IsSpectator reports whether the viewer watches a match they are not
// dealt into. Spectators see public state only and cannot act.
func IsSpectator(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentMatch == nil {
		return false
	}
	self, ok := snap.SelfPlayer(sess)
	return !ok || !self.IsInMatch
}

// CanStartMatch gates dealing a match: host only, a loaded category
// deck, enough players and no match in flight.
func CanStartMatch(sess *games.Session, snap *Snapshot, categoriesReady bool) bool {
	if sess == nil || snap == nil || !categoriesReady {
		return false
	}
	self, ok := snap.SelfPlayer(sess)
	return ok && self.IsHost &&
		snap.NumPlayers >= MinPlayers &&
		(snap.CurrentMatch == nil || snap.CurrentMatch.Phase == PhaseFinished)
}

// CanSubmitClue gates the clue box: clue phase, the viewer's turn, and
// the viewer still alive in the match.
func CanSubmitClue(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentMatch == nil {
		return false
	}
	self, ok := snap.SelfPlayer(sess)
	return snap.CurrentMatch.Phase == PhaseClue &&
		snap.CurrentMatch.CurrentTurnPlayerID == sess.PlayerID &&
		ok && self.IsInMatch && !self.IsEliminated
}

// CanVote gates voting: vote phase and the viewer alive in the match.
func CanVote(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentMatch == nil {
		return false
	}
	self, ok := snap.SelfPlayer(sess)
	return snap.CurrentMatch.Phase == PhaseVote &&
		ok && self.IsInMatch && !self.IsEliminated
}

// CanAdvanceRound gates moving past a reveal, host only.
func CanAdvanceRound(sess *games.Session, snap *Snapshot) bool {
	if sess == nil || snap == nil || snap.CurrentMatch == nil {
		return false
	}
	self, ok := snap.SelfPlayer(sess)
	return ok && self.IsHost &&
		snap.CurrentMatch.Phase == PhaseRevealed
}
