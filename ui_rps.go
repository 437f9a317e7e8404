// ui_rps.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sapogames/roomkit/games/rps"
	"github.com/sapogames/roomkit/roomctl"
)

type rpsUI struct {
	client *rps.Client
}

func (u *rpsUI) Help() string {
	return "play rock|paper|scissors | next"
}

func (u *rpsUI) Render(out io.Writer, ctrl *roomctl.Controller[*rps.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	round := snap.CurrentRound

	switch {
	case round.ID == "":
		fmt.Fprintln(out, "Waiting for the first round...")

	case round.Status == rps.RoundPending:
		fmt.Fprintf(out, "Round %d: %d/%d moves in.\n", round.RoundNumber, round.SubmittedCount, rps.RequiredPlayers)
		if rps.AlreadySubmitted(sess, snap) {
			fmt.Fprintln(out, "Your move is in. Waiting for the other player.")
		} else if rps.CanPlay(sess, snap) {
			fmt.Fprintln(out, "Your move: play rock|paper|scissors")
		}

	case round.Status == rps.RoundRevealed:
		for _, move := range round.RevealedMoves {
			fmt.Fprintf(out, "  %s played %s\n", move.Nickname, move.Choice)
		}
		if round.WinnerPlayerID == "" {
			fmt.Fprintf(out, "Round %d is a tie.\n", round.RoundNumber)
		} else {
			fmt.Fprintf(out, "Round %d goes to %s.\n", round.RoundNumber, round.WinnerNickname)
		}
		if rps.CanStartNextRound(sess, snap) {
			fmt.Fprintln(out, "Type next for another round.")
		}
	}
}

func (u *rpsUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*rps.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "play":
		if len(fields) < 2 {
			return true, fmt.Errorf("play what? rock, paper or scissors")
		}
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		choice := rps.Choice(fields[1])
		if choice != rps.Rock && choice != rps.Paper && choice != rps.Scissors {
			return true, fmt.Errorf("unknown choice %q", fields[1])
		}
		if !rps.CanPlay(sess, snap) {
			return true, fmt.Errorf("you cannot play right now")
		}
		return true, ctrl.RunAction(ctx, "play", func(ctx context.Context) error {
			return u.client.SubmitMove(ctx, sess, choice)
		})

	case "next":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !rps.CanStartNextRound(sess, snap) {
			return true, fmt.Errorf("the round is not over yet")
		}
		return true, ctrl.RunAction(ctx, "next", func(ctx context.Context) error {
			return u.client.StartNextRound(ctx, sess)
		})
	}
	return false, nil
}
