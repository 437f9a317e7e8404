package roomctl

import (
	"testing"

	"github.com/sapogames/roomkit/games"
)

func TestScreen_Derivation(t *testing.T) {
	backend := &testBackend{}

	t.Run("not configured", func(t *testing.T) {
		ctrl := New(testProfile(), backend.actions(), Options{})
		if got := ctrl.Screen(); got != ScreenNotConfigured {
			t.Errorf("expected not-configured, got %v", got)
		}
	})

	t.Run("no room", func(t *testing.T) {
		ctrl := newTestController(backend, Options{})
		if got := ctrl.Screen(); got != ScreenNoRoom {
			t.Errorf("expected no-room, got %v", got)
		}
	})

	t.Run("join prompt without a session", func(t *testing.T) {
		ctrl := newTestController(backend, Options{})
		ctrl.SetRoomCode("AB12CD")
		if got := ctrl.Screen(); got != ScreenJoinPrompt {
			t.Errorf("expected join-prompt, got %v", got)
		}
	})

	t.Run("lobby before the first snapshot", func(t *testing.T) {
		ctrl := newTestController(backend, Options{})
		ctrl.SetRoomCode("AB12CD")
		setSession(ctrl, testSession())
		if got := ctrl.Screen(); got != ScreenLobby {
			t.Errorf("expected lobby, got %v", got)
		}
	})

	t.Run("lobby without a round", func(t *testing.T) {
		ctrl := controllerWithSnapshot(games.RoundRef{})
		if got := ctrl.Screen(); got != ScreenLobby {
			t.Errorf("expected lobby, got %v", got)
		}
	})

	t.Run("active round", func(t *testing.T) {
		ctrl := controllerWithSnapshot(games.RoundRef{ID: "r1", Status: "pending", Number: 1, Present: true})
		if got := ctrl.Screen(); got != ScreenActiveRound {
			t.Errorf("expected active-round, got %v", got)
		}
	})

	t.Run("revealed round", func(t *testing.T) {
		ctrl := controllerWithSnapshot(games.RoundRef{ID: "r1", Status: "revealed", Number: 1, Present: true, Terminal: true})
		if got := ctrl.Screen(); got != ScreenRevealedRound {
			t.Errorf("expected revealed-round, got %v", got)
		}
	})
}

func controllerWithSnapshot(round games.RoundRef) *Controller[*testSnapshot] {
	backend := &testBackend{}
	ctrl := newTestController(backend, Options{})
	ctrl.SetRoomCode("AB12CD")
	setSession(ctrl, testSession())

	ctrl.mu.Lock()
	ctrl.snapshot = snapshotWithRound("room-1", round)
	ctrl.hasSnapshot = true
	ctrl.mu.Unlock()
	return ctrl
}

func TestScreen_String(t *testing.T) {
	screens := map[Screen]string{
		ScreenNotConfigured: "not-configured",
		ScreenNoRoom:        "no-room",
		ScreenJoinPrompt:    "join-prompt",
		ScreenLobby:         "lobby",
		ScreenActiveRound:   "active-round",
		ScreenRevealedRound: "revealed-round",
	}
	for screen, want := range screens {
		if got := screen.String(); got != want {
			t.Errorf("Screen(%d).String() = %q, want %q", screen, got, want)
		}
	}
}
