package roomctl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/monitor"
)

// testSnapshot is a minimal snapshot for driving the controller.
type testSnapshot struct {
	games.RoomHeader
	round games.RoundRef
}

func (s *testSnapshot) Round() games.RoundRef { return s.round }

func snapshotWithRound(roomID string, round games.RoundRef) *testSnapshot {
	return &testSnapshot{
		RoomHeader: games.RoomHeader{
			ID:         roomID,
			Code:       "AB12CD",
			State:      games.RoomPlaying,
			NumPlayers: 2,
		},
		round: round,
	}
}

// testBackend is a test double for the remote actions, counting calls and
// serving canned responses.
type testBackend struct {
	createCalls atomic.Int64
	joinCalls   atomic.Int64
	fetchCalls  atomic.Int64

	session *games.Session
	snap    *testSnapshot
	fetchErr error
}

func (b *testBackend) actions() Actions[*testSnapshot] {
	return Actions[*testSnapshot]{
		Create: func(ctx context.Context, nickname string) (*games.Session, error) {
			b.createCalls.Add(1)
			return b.session, nil
		},
		Join: func(ctx context.Context, roomCode, nickname string) (*games.Session, error) {
			b.joinCalls.Add(1)
			return b.session, nil
		},
		Fetch: func(ctx context.Context, sess *games.Session, roomCode string) (*testSnapshot, error) {
			b.fetchCalls.Add(1)
			if b.fetchErr != nil {
				return nil, b.fetchErr
			}
			return b.snap, nil
		},
	}
}

func setSession(ctrl *Controller[*testSnapshot], sess *games.Session) {
	ctrl.mu.Lock()
	ctrl.session = sess
	ctrl.mu.Unlock()
}

func testSession() *games.Session {
	return &games.Session{Nickname: "ana", PlayerID: "p1", PlayerSecret: "s1", RoomCode: "AB12CD"}
}

func testProfile() games.Profile {
	return games.Profile{
		Slug:         "test",
		Title:        "Test game",
		MinPlayers:   2,
		RevealDialog: true,
		Tables:       []string{"room_players"},
	}
}

func newTestController(backend *testBackend, opts Options) *Controller[*testSnapshot] {
	opts.Configured = true
	return New(testProfile(), backend.actions(), opts)
}

func TestController_RevealFiresOncePerRound(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "revealed", Number: 1, Present: true, Terminal: true}),
	}
	ctrl := newTestController(backend, Options{})
	ctrl.SetRoomCode("AB12CD")

	ctrl.Refresh(context.Background())
	if !ctrl.RevealOpen() {
		t.Fatal("expected the reveal to open on the first terminal snapshot")
	}

	ctrl.CloseReveal()
	ctrl.Refresh(context.Background())
	if ctrl.RevealOpen() {
		t.Error("the same round must not reopen the reveal after it was closed")
	}

	backend.snap = snapshotWithRound("room-1", games.RoundRef{ID: "r2", Status: "revealed", Number: 2, Present: true, Terminal: true})
	ctrl.Refresh(context.Background())
	if !ctrl.RevealOpen() {
		t.Error("a new terminal round must open the reveal again")
	}
}

func TestController_RevealClearedByNewPendingRound(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "revealed", Number: 1, Present: true, Terminal: true}),
	}
	ctrl := newTestController(backend, Options{})
	ctrl.SetRoomCode("AB12CD")
	setSession(ctrl, testSession())

	ctrl.Refresh(context.Background())
	if !ctrl.RevealOpen() {
		t.Fatal("expected an open reveal")
	}

	backend.snap = snapshotWithRound("room-1", games.RoundRef{ID: "r2", Status: "pending", Number: 2, Present: true, Terminal: false})
	ctrl.Refresh(context.Background())
	if ctrl.RevealOpen() {
		t.Error("a new pending round must close the stale reveal")
	}
	if ctrl.Screen() != ScreenActiveRound {
		t.Errorf("expected active round screen, got %v", ctrl.Screen())
	}
}

func TestController_NoRevealDialogProfile(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "revealed", Number: 1, Present: true, Terminal: true}),
	}
	profile := testProfile()
	profile.RevealDialog = false
	ctrl := New(profile, backend.actions(), Options{Configured: true})
	ctrl.SetRoomCode("AB12CD")
	setSession(ctrl, testSession())

	ctrl.Refresh(context.Background())
	if ctrl.RevealOpen() {
		t.Error("profiles without a reveal dialog must never open one")
	}
	if ctrl.Screen() != ScreenRevealedRound {
		t.Errorf("the screen still derives from the terminal round, got %v", ctrl.Screen())
	}
}

func TestController_StaleFetchDiscarded(t *testing.T) {
	backend := &testBackend{}
	ctrl := newTestController(backend, Options{})
	ctrl.SetRoomCode("AB12CD")

	newer := snapshotWithRound("room-1", games.RoundRef{ID: "r2", Status: "pending", Number: 2, Present: true})
	older := snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "pending", Number: 1, Present: true})

	// Two fetches started; the second one finishes first.
	ctrl.mu.Lock()
	ctrl.nextSeq = 2
	ctrl.mu.Unlock()

	ctrl.apply(2, newer, nil)
	ctrl.apply(1, older, nil)

	snap, ok := ctrl.Snapshot()
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if snap.Round().ID != "r2" {
		t.Errorf("stale response overwrote a newer snapshot: got round %s", snap.Round().ID)
	}
}

func TestController_ValidationRunsBeforeNetwork(t *testing.T) {
	backend := &testBackend{session: &games.Session{
		Nickname: "ana", PlayerID: "p1", PlayerSecret: "s1", RoomCode: "AB12CD",
	}}
	ctrl := newTestController(backend, Options{})

	if err := ctrl.CreateRoom(context.Background(), "   "); !errors.Is(err, ErrNicknameRequired) {
		t.Errorf("expected ErrNicknameRequired, got %v", err)
	}
	if err := ctrl.JoinRoom(context.Background(), "ana"); !errors.Is(err, ErrRoomCodeRequired) {
		t.Errorf("expected ErrRoomCodeRequired without a room code, got %v", err)
	}
	if n := backend.createCalls.Load() + backend.joinCalls.Load(); n != 0 {
		t.Errorf("validation failures must not reach the backend, saw %d calls", n)
	}
}

func TestController_CreateAdoptsSessionAndRefreshes(t *testing.T) {
	backend := &testBackend{
		session: &games.Session{Nickname: "ana", PlayerID: "p1", PlayerSecret: "s1", RoomCode: "ab12cd"},
		snap:    snapshotWithRound("room-1", games.RoundRef{}),
	}
	ctrl := newTestController(backend, Options{})

	if err := ctrl.CreateRoom(context.Background(), "ana"); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if ctrl.RoomCode() != "AB12CD" {
		t.Errorf("expected the room code normalized to AB12CD, got %s", ctrl.RoomCode())
	}
	if ctrl.Session() == nil {
		t.Fatal("expected the issued session to be adopted")
	}
	if backend.fetchCalls.Load() != 1 {
		t.Errorf("expected one refresh after the create, got %d", backend.fetchCalls.Load())
	}
}

func TestController_BusyRejectsOverlappingActions(t *testing.T) {
	backend := &testBackend{}
	ctrl := newTestController(backend, Options{})

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- ctrl.RunAction(context.Background(), "slow", func(ctx context.Context) error {
			close(started)
			<-release
			return errors.New("boom")
		})
	}()

	<-started
	if err := ctrl.RunAction(context.Background(), "second", func(ctx context.Context) error { return nil }); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for an overlapping action, got %v", err)
	}
	close(release)
	if err := <-done; err == nil {
		t.Error("expected the slow action's error to surface")
	}
	if ctrl.Busy() != "" {
		t.Errorf("busy flag must clear after the action, got %q", ctrl.Busy())
	}
}

func TestController_FetchErrorClearsSnapshot(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "pending", Number: 1, Present: true}),
	}
	ctrl := newTestController(backend, Options{})
	ctrl.SetRoomCode("AB12CD")
	setSession(ctrl, testSession())

	ctrl.Refresh(context.Background())
	if _, ok := ctrl.Snapshot(); !ok {
		t.Fatal("expected a snapshot after the first refresh")
	}

	backend.fetchErr = errors.New("room not found")
	ctrl.Refresh(context.Background())

	if _, ok := ctrl.Snapshot(); ok {
		t.Error("a failed fetch must clear the cached snapshot")
	}
	if ctrl.Err() == nil {
		t.Error("the fetch error must be recorded")
	}
	if ctrl.Screen() != ScreenLobby {
		t.Errorf("without a snapshot the screen falls back to the lobby, got %v", ctrl.Screen())
	}
}

func TestController_IdentitySnapshotNeedsSession(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{}),
	}
	profile := testProfile()
	profile.IdentitySnapshot = true
	ctrl := New(profile, backend.actions(), Options{Configured: true})
	ctrl.SetRoomCode("AB12CD")

	ctrl.Refresh(context.Background())
	if backend.fetchCalls.Load() != 0 {
		t.Errorf("identity snapshots must not be fetched without a session, saw %d calls", backend.fetchCalls.Load())
	}
}

func TestController_PollDrivesRefreshes(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{}),
	}
	clock := clockwork.NewFakeClock()
	ctrl := newTestController(backend, Options{Clock: clock, PollInterval: 2 * time.Second})
	ctrl.SetRoomCode("AB12CD")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl.Start(ctx)
	defer ctrl.Stop()

	if backend.fetchCalls.Load() != 1 {
		t.Fatalf("expected the immediate refresh on start, got %d", backend.fetchCalls.Load())
	}

	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return backend.fetchCalls.Load() >= 2 })

	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return backend.fetchCalls.Load() >= 3 })
}

func TestController_SetRoomCodeResetsState(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "revealed", Number: 1, Present: true, Terminal: true}),
	}
	ctrl := newTestController(backend, Options{})
	ctrl.SetRoomCode("ab-12 cd!!")

	if ctrl.RoomCode() != "AB12CD" {
		t.Fatalf("expected the room code normalized to AB12CD, got %s", ctrl.RoomCode())
	}

	ctrl.Refresh(context.Background())
	if !ctrl.RevealOpen() {
		t.Fatal("expected an open reveal")
	}

	ctrl.SetRoomCode("ZZ99ZZ")
	if _, ok := ctrl.Snapshot(); ok {
		t.Error("switching rooms must drop the old snapshot")
	}
	if ctrl.RevealOpen() {
		t.Error("switching rooms must drop the reveal state")
	}
}

func TestController_MonitorObservesFetches(t *testing.T) {
	backend := &testBackend{
		snap: snapshotWithRound("room-1", games.RoundRef{ID: "r1", Status: "pending", Number: 1, Present: true}),
	}
	mon := monitor.NewMonitorWith("roomkit_test", nil)
	ctrl := newTestController(backend, Options{Monitor: mon})
	ctrl.SetRoomCode("AB12CD")

	ctrl.Refresh(context.Background())
	if got := mon.Fetches(); got != 1 {
		t.Fatalf("fetches = %d, want 1", got)
	}

	backend.fetchErr = errors.New("boom")
	ctrl.Refresh(context.Background())
	if got := mon.Fetches(); got != 2 {
		t.Errorf("failed fetches count too, got %d, want 2", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
