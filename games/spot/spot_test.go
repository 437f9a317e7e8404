package spot

import (
	"testing"

	"github.com/sapogames/roomkit/games"
)

func testSnapshot(status string, participants []string) *Snapshot {
	players := []Player{
		{Player: games.Player{ID: "p1", Nickname: "ana", IsHost: true}},
		{Player: games.Player{ID: "p2", Nickname: "bea"}},
		{Player: games.Player{ID: "p3", Nickname: "cris"}},
	}
	snap := &Snapshot{
		RoomHeader: games.RoomHeader{
			ID:         "room-1",
			Code:       "AB12CD",
			State:      games.RoomPlaying,
			NumPlayers: 3,
		},
		SpotPlayers: players,
	}
	if status != "" {
		snap.CurrentRound = &Round{
			ID:                   "r1",
			RoundNumber:          1,
			Status:               status,
			PromptText:           "Quien se dormiria en el cine",
			ParticipantPlayerIDs: participants,
			ParticipantCount:     len(participants),
		}
	}
	return snap
}

func TestIsParticipant(t *testing.T) {
	participants := []string{"p1", "p2"}

	if !IsParticipant(&games.Session{PlayerID: "p1"}, testSnapshot(RoundPending, participants)) {
		t.Error("expected p1 to participate")
	}
	if IsParticipant(&games.Session{PlayerID: "p3"}, testSnapshot(RoundPending, participants)) {
		t.Error("p3 joined mid-round and spectates")
	}
	if IsParticipant(&games.Session{PlayerID: "p1"}, testSnapshot("", nil)) {
		t.Error("no round, no participants")
	}
}

func TestCanStartRound(t *testing.T) {
	sess := &games.Session{PlayerID: "p1"}

	if !CanStartRound(sess, testSnapshot("", nil), true) {
		t.Error("a room without a round can draw a card")
	}
	if !CanStartRound(sess, testSnapshot(RoundRevealed, []string{"p1"}), true) {
		t.Error("a revealed round allows the next card")
	}
	if CanStartRound(sess, testSnapshot(RoundPending, []string{"p1"}), true) {
		t.Error("a pending round blocks the next card")
	}
	if CanStartRound(sess, testSnapshot("", nil), false) {
		t.Error("no deck, no round")
	}

	small := testSnapshot("", nil)
	small.NumPlayers = 2
	if CanStartRound(sess, small, true) {
		t.Error("three players are required")
	}
}

func TestCanVote(t *testing.T) {
	participants := []string{"p1", "p2"}

	if !CanVote(&games.Session{PlayerID: "p1"}, testSnapshot(RoundPending, participants)) {
		t.Error("a participant votes in a pending round")
	}
	if CanVote(&games.Session{PlayerID: "p3"}, testSnapshot(RoundPending, participants)) {
		t.Error("spectators cannot vote")
	}
	if CanVote(&games.Session{PlayerID: "p1"}, testSnapshot(RoundRevealed, participants)) {
		t.Error("voting closes with the reveal")
	}
}

func TestRoomPlayersBridgesSpotPlayers(t *testing.T) {
	snap := testSnapshot("", nil)
	players := snap.RoomPlayers()
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	if players[0].Nickname != "ana" || !players[0].IsHost {
		t.Errorf("player fields lost in the bridge: %+v", players[0])
	}
}

func TestSnapshotRound(t *testing.T) {
	if testSnapshot("", nil).Round().Present {
		t.Error("a nil round is not present")
	}
	round := testSnapshot(RoundRevealed, []string{"p1"}).Round()
	if !round.Present || !round.Terminal {
		t.Errorf("unexpected round ref: %+v", round)
	}
}
