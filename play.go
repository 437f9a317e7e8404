// play.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sapogames/roomkit/config"
	"github.com/sapogames/roomkit/content"
	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/gateway"
	"github.com/sapogames/roomkit/logger"
	"github.com/sapogames/roomkit/monitor"
	"github.com/sapogames/roomkit/realtime"
	"github.com/sapogames/roomkit/roomctl"
	"github.com/sapogames/roomkit/store"
)

// playEnv bundles the collaborators shared by every game session.
type playEnv struct {
	cfg      *config.Config
	gateway  *gateway.Client
	store    *store.Store
	listener *realtime.Listener
	mon      *monitor.Monitor
	content  *content.Loader
	nickname string
	roomCode string
	out      io.Writer
}

func newPlayEnv(flags *cliFlags) (*playEnv, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags win over config file and environment.
	if flags.backendURL != "" {
		cfg.Backend.URL = flags.backendURL
	}
	if flags.anonKey != "" {
		cfg.Backend.AnonKey = flags.anonKey
	}
	if flags.dataDir != "" {
		cfg.Client.DataDir = flags.dataDir
	}
	if flags.pollInterval > 0 {
		cfg.Client.PollInterval = flags.pollInterval
	}
	if flags.metricsAddr != "" {
		cfg.Monitor.Address = flags.metricsAddr
	}

	st, err := store.Open(cfg.Client.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	env := &playEnv{
		cfg:      cfg,
		gateway:  gateway.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey),
		store:    st,
		listener: realtime.NewListener(cfg.Backend.URL, cfg.Backend.AnonKey),
		content:  content.NewLoader(cfg.Client.ContentBaseURL),
		nickname: flags.nickname,
		roomCode: flags.roomCode,
		out:      os.Stdout,
	}

	if cfg.Monitor.Address != "" {
		env.mon = monitor.NewMonitor("roomkit")
		go env.mon.StartServer(cfg.Monitor.Address)
	}

	return env, nil
}

func (e *playEnv) options() roomctl.Options {
	opts := roomctl.Options{
		Store:        e.store,
		PollInterval: e.cfg.Client.PollInterval,
		Configured:   e.gateway.Configured(),
	}
	if e.listener.Configured() {
		opts.Invalidator = e.listener
	}
	if e.mon != nil {
		opts.Monitor = e.mon
	}
	return opts
}

func (e *playEnv) Close() {
	if err := e.store.Close(); err != nil {
		logger.L().Warnf("failed to close session store: %v", err)
	}
}

// gameUI renders one game's round area and handles its commands. The
// shared loop owns everything up to the lobby; the adapter owns the rest.
type gameUI[S games.Snapshot] interface {
	// Render draws the round area below the shared room header.
	Render(out io.Writer, ctrl *roomctl.Controller[S])
	// Help lists the game commands for the prompt line.
	Help() string
	// Handle dispatches a game command. It reports whether the input was
	// recognized.
	Handle(ctx context.Context, ctrl *roomctl.Controller[S], line string) (bool, error)
}

// runSession is the interactive loop: it reacts to controller events and
// terminal input until the player quits.
func runSession[S games.Snapshot](ctx context.Context, env *playEnv, ctrl *roomctl.Controller[S], ui gameUI[S]) error {
	if !env.gateway.Configured() {
		fmt.Fprintln(env.out, "Backend is not configured.")
		fmt.Fprintln(env.out, "Set SAPOGAMES_BACKEND_URL and SAPOGAMES_BACKEND_ANON_KEY (an .env file works) and try again.")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if env.roomCode != "" {
		ctrl.SetRoomCode(env.roomCode)
	}
	ctrl.Start(ctx)
	defer ctrl.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	render(env, ctrl, ui)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-ctrl.Events():
			if ev.Kind == roomctl.EventReveal {
				fmt.Fprintln(env.out, "\n=== Round over ===")
			}
			render(env, ctrl, ui)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := dispatch(ctx, env, ctrl, ui, strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintf(env.out, "! %v\n", err)
			}
			if quit {
				return nil
			}
			render(env, ctrl, ui)
		}
	}
}

// dispatch handles the shared commands and falls through to the game
// adapter. Unknown input prints the help line.
func dispatch[S games.Snapshot](ctx context.Context, env *playEnv, ctrl *roomctl.Controller[S], ui gameUI[S], line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "quit", "exit":
		return true, nil

	case "room":
		if len(fields) < 2 {
			return false, roomctl.ErrRoomCodeRequired
		}
		ctrl.SetRoomCode(fields[1])
		ctrl.Refresh(ctx)
		return false, nil

	case "create":
		return false, ctrl.CreateRoom(ctx, nicknameArg[S](env, fields))

	case "join":
		return false, ctrl.JoinRoom(ctx, nicknameArg[S](env, fields))

	case "share":
		fmt.Fprintln(env.out, ctrl.ShareURL(env.cfg.Client.ShareBaseURL))
		return false, nil

	case "qr":
		return false, printQR(env.out, ctrl.ShareURL(env.cfg.Client.ShareBaseURL))

	case "close":
		ctrl.CloseReveal()
		return false, nil
	}

	handled, err := ui.Handle(ctx, ctrl, line)
	if !handled {
		fmt.Fprintln(env.out, "Commands: room <code> | create [nick] | join [nick] | share | qr | close | quit")
		fmt.Fprintln(env.out, "Game:     "+ui.Help())
	}
	return false, err
}

// nicknameArg resolves the nickname for create/join: explicit argument,
// then the --nickname flag, then the device-wide cached one.
func nicknameArg[S games.Snapshot](env *playEnv, fields []string) string {
	if len(fields) > 1 {
		return strings.Join(fields[1:], " ")
	}
	if env.nickname != "" {
		return env.nickname
	}
	return env.store.Nickname()
}

func render[S games.Snapshot](env *playEnv, ctrl *roomctl.Controller[S], ui gameUI[S]) {
	out := env.out
	profile := ctrl.Profile()

	fmt.Fprintf(out, "\n[%s] ", profile.Title)

	switch ctrl.Screen() {
	case roomctl.ScreenNoRoom:
		fmt.Fprintln(out, "no room. Use: room <code> to enter one, or create [nick] to open a new one.")

	case roomctl.ScreenJoinPrompt:
		fmt.Fprintf(out, "room %s. You are not in it yet. Use: join [nick]\n", ctrl.RoomCode())

	default:
		fmt.Fprintf(out, "room %s", ctrl.RoomCode())
		if snap, ok := ctrl.Snapshot(); ok {
			fmt.Fprintf(out, " (%s, %d players)\n", snap.Status(), snap.PlayerCount())
			renderPlayers(out, snap.RoomPlayers(), ctrl.Session())
			ui.Render(out, ctrl)
		} else {
			fmt.Fprintln(out, " (loading...)")
		}
	}

	if err := ctrl.Err(); err != nil {
		fmt.Fprintf(out, "! %v\n", err)
	}
	fmt.Fprint(out, "> ")
}

func renderPlayers(out io.Writer, players []games.Player, sess *games.Session) {
	for _, p := range players {
		marks := ""
		if p.IsHost {
			marks += " (host)"
		}
		if sess != nil && p.ID == sess.PlayerID {
			marks += " (you)"
		}
		if p.IsEliminated {
			marks += " (out)"
		}
		fmt.Fprintf(out, "  - %s%s\n", p.Nickname, marks)
	}
}

// pickPlayerIndex parses a 1-based player number from the list rendered
// alongside the vote prompt.
func pickPlayerIndex(arg string, count int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("player must be 1-%d", count)
	}
	return n - 1, nil
}

func printQR(out io.Writer, url string) error {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, code.ToSmallString(false))
	return nil
}
