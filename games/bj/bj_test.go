package bj

import (
	"testing"

	"github.com/sapogames/roomkit/games"
)

func testSnapshot(status, selfTurnStatus string) *Snapshot {
	return &Snapshot{
		RoomHeader: games.RoomHeader{
			ID:         "room-1",
			Code:       "AB12CD",
			State:      games.RoomPlaying,
			NumPlayers: 3,
		},
		CurrentRound: &Round{
			ID:          "r1",
			RoundNumber: 1,
			Status:      status,
			PlayerHands: []Hand{
				{PlayerID: "p1", Nickname: "ana", TurnStatus: selfTurnStatus, Cards: []string{"K♠", "6♦"}, Total: 16},
				{PlayerID: "p2", Nickname: "bea", TurnStatus: HandStood, Total: 19},
			},
		},
	}
}

func TestOwnHand(t *testing.T) {
	snap := testSnapshot(RoundPlayerTurn, HandActive)

	hand := snap.OwnHand(&games.Session{PlayerID: "p1"})
	if hand == nil || hand.PlayerID != "p1" {
		t.Fatalf("expected the viewer's hand, got %+v", hand)
	}

	if snap.OwnHand(&games.Session{PlayerID: "p9"}) != nil {
		t.Error("a player without a seat has no hand")
	}
	if snap.OwnHand(nil) != nil {
		t.Error("no session means no hand")
	}

	fresh := &Snapshot{RoomHeader: games.RoomHeader{NumPlayers: 3}}
	if fresh.OwnHand(&games.Session{PlayerID: "p1"}) != nil {
		t.Error("no round means no hand")
	}
}

func TestCanPlay(t *testing.T) {
	sess := &games.Session{PlayerID: "p1"}

	if !CanPlay(sess, testSnapshot(RoundPlayerTurn, HandActive)) {
		t.Error("an active hand in the player phase plays")
	}
	if CanPlay(sess, testSnapshot(RoundPlayerTurn, HandStood)) {
		t.Error("a stood hand is done")
	}
	if CanPlay(sess, testSnapshot(RoundPlayerTurn, HandBust)) {
		t.Error("a bust hand is done")
	}
	if CanPlay(sess, testSnapshot(RoundPlayerTurn, HandBlackjack)) {
		t.Error("a natural blackjack is done")
	}
	if CanPlay(sess, testSnapshot(RoundDealerTurn, HandActive)) {
		t.Error("the dealer phase takes no player input")
	}
	if CanPlay(sess, testSnapshot(RoundRevealed, HandActive)) {
		t.Error("a revealed round is not playable")
	}
	if CanPlay(&games.Session{PlayerID: "p9"}, testSnapshot(RoundPlayerTurn, HandActive)) {
		t.Error("a player without a seat cannot play")
	}
	if CanPlay(nil, testSnapshot(RoundPlayerTurn, HandActive)) {
		t.Error("no session means no play")
	}
}

func TestStartRoundGates(t *testing.T) {
	sess := &games.Session{PlayerID: "p1"}

	fresh := &Snapshot{RoomHeader: games.RoomHeader{NumPlayers: 2}}
	if !CanStartRound(sess, fresh) {
		t.Error("two seated players can deal the first round")
	}

	solo := &Snapshot{RoomHeader: games.RoomHeader{NumPlayers: 1}}
	if CanStartRound(sess, solo) {
		t.Error("dealing needs a second player")
	}

	if CanStartRound(sess, testSnapshot(RoundPlayerTurn, HandActive)) {
		t.Error("a running round cannot be dealt over")
	}

	if !CanStartNextRound(sess, testSnapshot(RoundRevealed, HandStood)) {
		t.Error("a revealed round allows the next deal")
	}
	if CanStartNextRound(sess, testSnapshot(RoundPlayerTurn, HandActive)) {
		t.Error("a pending round cannot be restarted")
	}

	shrunk := testSnapshot(RoundRevealed, HandStood)
	shrunk.NumPlayers = 1
	if CanStartNextRound(sess, shrunk) {
		t.Error("the next deal still needs the player minimum")
	}
}
