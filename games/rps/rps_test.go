package rps

import (
	"testing"

	"github.com/sapogames/roomkit/games"
)

func testSnapshot(status string, submitted []string) *Snapshot {
	return &Snapshot{
		RoomHeader: games.RoomHeader{
			ID:         "room-1",
			Code:       "AB12CD",
			State:      games.RoomPlaying,
			NumPlayers: 2,
		},
		CurrentRound: Round{
			ID:                 "r1",
			RoundNumber:        1,
			Status:             status,
			SubmittedCount:     len(submitted),
			SubmittedPlayerIDs: submitted,
		},
	}
}

func TestCanPlay(t *testing.T) {
	sess := &games.Session{PlayerID: "p1"}

	if !CanPlay(sess, testSnapshot(RoundPending, nil)) {
		t.Error("a pending round with no move yet must be playable")
	}
	if CanPlay(sess, testSnapshot(RoundPending, []string{"p1"})) {
		t.Error("a second move in the same round must be blocked")
	}
	if CanPlay(sess, testSnapshot(RoundRevealed, nil)) {
		t.Error("a revealed round is not playable")
	}

	short := testSnapshot(RoundPending, nil)
	short.NumPlayers = 1
	if CanPlay(sess, short) {
		t.Error("playing must wait for the second seat")
	}

	if CanPlay(nil, testSnapshot(RoundPending, nil)) {
		t.Error("no session, no play")
	}
}

func TestAlreadySubmitted(t *testing.T) {
	sess := &games.Session{PlayerID: "p1"}

	if AlreadySubmitted(sess, testSnapshot(RoundPending, []string{"p2"})) {
		t.Error("someone else's move is not mine")
	}
	if !AlreadySubmitted(sess, testSnapshot(RoundPending, []string{"p2", "p1"})) {
		t.Error("expected the submitted move to be found")
	}
}

func TestCanStartNextRound(t *testing.T) {
	sess := &games.Session{PlayerID: "p1"}

	if !CanStartNextRound(sess, testSnapshot(RoundRevealed, nil)) {
		t.Error("a revealed round allows starting the next one")
	}
	if CanStartNextRound(sess, testSnapshot(RoundPending, nil)) {
		t.Error("a pending round cannot be skipped")
	}
}

func TestSnapshotRound(t *testing.T) {
	snap := testSnapshot(RoundRevealed, nil)
	round := snap.Round()
	if !round.Present || !round.Terminal || round.ID != "r1" {
		t.Errorf("unexpected round ref: %+v", round)
	}

	empty := testSnapshot(RoundPending, nil)
	empty.CurrentRound = Round{}
	if empty.Round().Present {
		t.Error("a zero round is not present")
	}
}
