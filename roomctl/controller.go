// roomctl/controller.go
package roomctl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/logger"
	"github.com/sapogames/roomkit/monitor"
	"github.com/sapogames/roomkit/poller"
	"github.com/sapogames/roomkit/store"
)

var (
	// Validation errors are raised before any remote call is made.
	ErrNicknameRequired = errors.New("enter a nickname first")
	ErrRoomCodeRequired = errors.New("room code is missing or invalid")
	ErrNoSession        = errors.New("enter the room before playing")
	ErrBusy             = errors.New("another action is still in flight")
)

const DefaultPollInterval = 2 * time.Second

// CreateFunc allocates a new room and returns the caller's identity.
type CreateFunc func(ctx context.Context, nickname string) (*games.Session, error)

// JoinFunc attaches a new player to an existing room by code.
type JoinFunc func(ctx context.Context, roomCode, nickname string) (*games.Session, error)

// FetchFunc pulls the authoritative room snapshot. The session is nil for
// games whose snapshot call takes only the room code.
type FetchFunc[S games.Snapshot] func(ctx context.Context, sess *games.Session, roomCode string) (S, error)

// Actions bundles the remote calls the controller drives for one game.
type Actions[S games.Snapshot] struct {
	Create CreateFunc
	Join   JoinFunc
	Fetch  FetchFunc[S]
}

// Invalidator is the push-notification channel: any change on a watched
// table triggers one out-of-band refresh. realtime.Listener implements it.
type Invalidator interface {
	Subscribe(ctx context.Context, roomID string, tables []string, onChange func()) (func(), error)
}

// Options wires the controller's collaborators. Every field is optional;
// a zero Options yields a poll-only controller with no persistence.
type Options struct {
	Store        *store.Store
	Invalidator  Invalidator
	Clock        clockwork.Clock
	Metrics      *monitor.Metrics
	Monitor      *monitor.Monitor
	PollInterval time.Duration

	// Configured mirrors the gateway configuration state; when false the
	// controller derives the setup-instructions screen and never syncs.
	Configured bool
}

// EventKind enumerates controller notifications.
type EventKind int

const (
	// EventUpdated fires after every applied snapshot or fetch error.
	EventUpdated EventKind = iota
	// EventReveal fires exactly once per concluded round.
	EventReveal
	// EventRevealCleared fires when a revealed round gives way to a new
	// pending one.
	EventRevealCleared
)

type Event struct {
	Kind    EventKind
	RoundID string
}

// Controller is the room session controller shared by all seven games:
// it owns the local session, the last snapshot, the reveal marker and the
// sync loop, parameterized by a game profile and its remote actions.
//
// The snapshot is the only source of truth for shared state; the
// controller never advances round or phase locally.
type Controller[S games.Snapshot] struct {
	profile games.Profile
	actions Actions[S]

	st           *store.Store
	invalidator  Invalidator
	clock        clockwork.Clock
	metrics      *monitor.Metrics
	mon          *monitor.Monitor
	pollInterval time.Duration
	configured   bool

	mu          sync.Mutex
	roomCode    string
	session     *games.Session
	snapshot    S
	hasSnapshot bool
	lastErr     error
	busyAction  string

	seenRevealedRoundID string
	revealOpen          bool

	// Fetch responses are applied in start order; a slow fetch that
	// finishes after a newer one is discarded instead of regressing the
	// view.
	nextSeq    uint64
	appliedSeq uint64

	runCtx  context.Context
	runStop context.CancelFunc
	poll    *poller.Poller

	subMu            sync.Mutex
	subscribedRoomID string
	unsubscribe      func()

	events chan Event
}

func New[S games.Snapshot](profile games.Profile, actions Actions[S], opts Options) *Controller[S] {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	metrics := opts.Metrics
	if metrics == nil && opts.Monitor != nil {
		metrics = opts.Monitor.Metrics()
	}

	return &Controller[S]{
		profile:      profile,
		actions:      actions,
		st:           opts.Store,
		invalidator:  opts.Invalidator,
		clock:        clock,
		metrics:      metrics,
		mon:          opts.Monitor,
		pollInterval: interval,
		configured:   opts.Configured,
		events:       make(chan Event, 16),
	}
}

func (c *Controller[S]) Profile() games.Profile {
	return c.profile
}

// Events returns the controller's notification channel. Events are dropped
// rather than blocking the sync loop when nobody drains the channel.
func (c *Controller[S]) Events() <-chan Event {
	return c.events
}

func (c *Controller[S]) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

// SetRoomCode points the controller at a room. The code is normalized; an
// empty code clears the session and snapshot. Any session previously
// persisted for the code is picked up again, so revisiting a room from the
// same device resumes the old identity.
func (c *Controller[S]) SetRoomCode(code string) {
	normalized := games.NormalizeRoomCode(code)

	c.mu.Lock()
	if normalized == c.roomCode {
		c.mu.Unlock()
		return
	}

	c.roomCode = normalized
	var zero S
	c.snapshot = zero
	c.hasSnapshot = false
	c.lastErr = nil
	c.seenRevealedRoundID = ""
	c.revealOpen = false

	if normalized == "" {
		c.session = nil
	} else {
		c.session = c.st.LoadSession(c.profile.Slug, normalized)
	}
	c.mu.Unlock()

	c.dropSubscription()
}

func (c *Controller[S]) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *Controller[S]) Session() *games.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Snapshot returns the last applied snapshot, if any.
func (c *Controller[S]) Snapshot() (S, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.hasSnapshot
}

// Err returns the error of the most recent failed action or fetch.
func (c *Controller[S]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller[S]) RevealOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revealOpen
}

// CloseReveal hides the result surface without touching the seen marker,
// so the same round never pops it again.
func (c *Controller[S]) CloseReveal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revealOpen = false
}

// Nickname returns the device-wide cached nickname.
func (c *Controller[S]) Nickname() string {
	return c.st.Nickname()
}

// ShareURL is the join link for the current room.
func (c *Controller[S]) ShareURL(base string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return games.ShareURL(base, c.profile.Slug, c.roomCode)
}

// CreateRoom allocates a new room for the given nickname, persists the
// issued session and fetches the first snapshot.
func (c *Controller[S]) CreateRoom(ctx context.Context, nickname string) error {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return c.fail(ErrNicknameRequired)
	}

	return c.RunAction(ctx, "create", func(ctx context.Context) error {
		sess, err := c.actions.Create(ctx, trimmed)
		if err != nil {
			return err
		}
		c.adoptSession(trimmed, sess)
		return nil
	})
}

// JoinRoom attaches the player to the controller's current room code.
func (c *Controller[S]) JoinRoom(ctx context.Context, nickname string) error {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return c.fail(ErrNicknameRequired)
	}

	c.mu.Lock()
	code := c.roomCode
	c.mu.Unlock()
	if code == "" {
		return c.fail(ErrRoomCodeRequired)
	}

	return c.RunAction(ctx, "join", func(ctx context.Context) error {
		sess, err := c.actions.Join(ctx, code, trimmed)
		if err != nil {
			return err
		}
		c.adoptSession(trimmed, sess)
		return nil
	})
}

func (c *Controller[S]) adoptSession(nickname string, sess *games.Session) {
	if err := c.st.SaveNickname(nickname); err != nil {
		logger.L().Warnf("failed to cache nickname: %v", err)
	}
	if err := c.st.SaveSession(c.profile.Slug, sess); err != nil {
		logger.L().Warnf("failed to persist session for room %s: %v", sess.RoomCode, err)
	}

	c.mu.Lock()
	c.roomCode = games.NormalizeRoomCode(sess.RoomCode)
	c.session = sess
	c.mu.Unlock()
}

// RunAction executes a player intent: it rejects overlapping actions,
// clears the error banner, records a remote rejection verbatim and
// refreshes the snapshot after success. Shared state is never mutated
// speculatively; a rejection leaves the view on the last known snapshot.
func (c *Controller[S]) RunAction(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	if c.busyAction != "" {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busyAction = name
	c.lastErr = nil
	c.mu.Unlock()

	err := fn(ctx)

	c.mu.Lock()
	c.busyAction = ""
	if err != nil {
		c.lastErr = err
	}
	c.mu.Unlock()

	if err != nil {
		c.emit(Event{Kind: EventUpdated})
		return err
	}

	c.Refresh(ctx)
	return nil
}

// Busy returns the name of the action in flight, or "".
func (c *Controller[S]) Busy() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busyAction
}

func (c *Controller[S]) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.emit(Event{Kind: EventUpdated})
	return err
}

// Start begins the sync loop: an immediate refresh plus the fixed-interval
// poller. The push subscription is established lazily once a snapshot
// reveals the room id.
func (c *Controller[S]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.runStop != nil || !c.configured {
		c.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.runCtx = runCtx
	c.runStop = cancel
	c.poll = poller.New(c.pollInterval, c.clock)
	p := c.poll
	c.mu.Unlock()

	c.Refresh(runCtx)

	p.Start(runCtx, func(ctx context.Context) {
		if c.metrics != nil {
			c.metrics.PollTicks.Inc()
		}
		c.Refresh(ctx)
	})
}

// Stop tears down the poller and the push subscription. In-flight fetches
// are not cancelled; their results are discarded by the sequence guard or
// simply overwritten by later state.
func (c *Controller[S]) Stop() {
	c.mu.Lock()
	if c.runStop != nil {
		c.runStop()
		c.runStop = nil
	}
	if c.poll != nil {
		c.poll.Stop()
		c.poll = nil
	}
	c.mu.Unlock()

	c.dropSubscription()
}

// Refresh fetches and applies a snapshot. Safe to call concurrently from
// the poller and the push listener; last-started fetch wins.
func (c *Controller[S]) Refresh(ctx context.Context) {
	c.mu.Lock()
	if !c.configured || c.roomCode == "" {
		c.mu.Unlock()
		return
	}
	if c.profile.IdentitySnapshot && c.session == nil {
		c.mu.Unlock()
		return
	}
	c.nextSeq++
	seq := c.nextSeq
	sess := c.session
	code := c.roomCode
	c.mu.Unlock()

	started := c.clock.Now()
	snap, err := c.actions.Fetch(ctx, sess, code)
	elapsed := c.clock.Since(started)
	switch {
	case c.mon != nil:
		c.mon.ObserveFetch(elapsed, err)
	case c.metrics != nil:
		c.metrics.SnapshotFetches.Inc()
		c.metrics.FetchLatency.Observe(elapsed.Seconds())
		if err != nil {
			c.metrics.SnapshotErrors.Inc()
		}
	}

	c.apply(seq, snap, err)
}

func (c *Controller[S]) apply(seq uint64, snap S, err error) {
	c.mu.Lock()

	if seq <= c.appliedSeq {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.StaleDiscards.Inc()
		}
		return
	}
	c.appliedSeq = seq

	if err != nil {
		var zero S
		c.snapshot = zero
		c.hasSnapshot = false
		c.lastErr = err
		c.mu.Unlock()
		c.emit(Event{Kind: EventUpdated})
		return
	}

	c.snapshot = snap
	c.hasSnapshot = true
	c.lastErr = nil

	var reveal, cleared bool
	round := snap.Round()
	if round.Present {
		if round.Terminal && round.ID != c.seenRevealedRoundID {
			c.seenRevealedRoundID = round.ID
			if c.profile.RevealDialog {
				c.revealOpen = true
				reveal = true
			}
		}
		if !round.Terminal && c.revealOpen {
			c.revealOpen = false
			cleared = true
		}
	}
	roomID := snap.RoomID()
	c.mu.Unlock()

	if reveal {
		if c.metrics != nil {
			c.metrics.RevealsShown.Inc()
		}
		c.emit(Event{Kind: EventReveal, RoundID: round.ID})
	}
	if cleared {
		c.emit(Event{Kind: EventRevealCleared, RoundID: round.ID})
	}
	c.emit(Event{Kind: EventUpdated})

	c.ensureSubscription(roomID)
}

// ensureSubscription keeps at most one push channel open, re-established
// whenever the room id changes.
func (c *Controller[S]) ensureSubscription(roomID string) {
	if c.invalidator == nil || roomID == "" {
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.subscribedRoomID == roomID {
		return
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
		c.subscribedRoomID = ""
	}

	c.mu.Lock()
	runCtx := c.runCtx
	c.mu.Unlock()
	if runCtx == nil || runCtx.Err() != nil {
		return
	}

	teardown, err := c.invalidator.Subscribe(runCtx, roomID, c.profile.Tables, func() {
		if c.metrics != nil {
			c.metrics.RealtimeEvents.Inc()
		}
		c.Refresh(runCtx)
	})
	if err != nil {
		// The poller alone still converges within one interval.
		logger.L().Warnf("push channel unavailable for room %s: %v", roomID, err)
		return
	}
	c.subscribedRoomID = roomID
	c.unsubscribe = teardown
}

func (c *Controller[S]) dropSubscription() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.subscribedRoomID = ""
}
