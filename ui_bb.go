// ui_bb.go
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sapogames/roomkit/games/bb"
	"github.com/sapogames/roomkit/roomctl"
)

type bbUI struct {
	client *bb.Client
}

func (u *bbUI) Help() string {
	return "play <card#> [card#...] | challenge | deal"
}

func (u *bbUI) Render(out io.Writer, ctrl *roomctl.Controller[*bb.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	round := snap.CurrentRound

	if round == nil {
		if bb.CanStartFirstRound(sess, snap) {
			fmt.Fprintln(out, "Type deal to start the first round.")
		} else {
			fmt.Fprintln(out, "Waiting for more players...")
		}
		return
	}

	fmt.Fprintf(out, "Round %d. Target color: %s. Pile: %d cards.\n", round.RoundNumber, round.TargetColor, round.PileCount)
	if round.LastPlayPlayerID != "" {
		fmt.Fprintf(out, "%s claims %d %s card(s).\n", round.LastPlayPlayerNickname, round.LastPlayCount, round.TargetColor)
	}

	if len(round.HandCards) > 0 {
		fmt.Fprint(out, "Your hand:")
		for i, card := range round.HandCards {
			fmt.Fprintf(out, " %d:%s", i+1, card)
		}
		fmt.Fprintln(out)
	}

	switch round.Status {
	case bb.RoundPending:
		if bb.IsCurrentPlayer(sess, snap) {
			hint := "Your turn: play <card#> [card#...]"
			if bb.CanChallenge(sess, snap) {
				hint += " or challenge"
			}
			fmt.Fprintln(out, hint)
		} else {
			fmt.Fprintf(out, "Waiting for %s...\n", round.CurrentPlayerNickname)
		}

	case bb.RoundRevealed:
		if len(round.RevealedCards) > 0 {
			fmt.Fprintf(out, "Revealed: %v. Challenge was %s.\n", round.RevealedCards, round.ChallengeResult)
		}
		if round.LoserPlayerID != "" {
			fmt.Fprintf(out, "%s loses a life.\n", round.LoserNickname)
		}
		if round.WinnerNickname != "" {
			fmt.Fprintf(out, "%s wins the match!\n", round.WinnerNickname)
		}
		if bb.CanStartNextRound(sess, snap) {
			fmt.Fprintln(out, "Type deal for the next round.")
		}
	}
}

func (u *bbUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*bb.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "play":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bb.CanPlay(sess, snap) {
			return true, fmt.Errorf("it is not your turn")
		}
		var indexes []int
		for _, arg := range fields[1:] {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > len(snap.CurrentRound.HandCards) {
				return true, fmt.Errorf("invalid card %q", arg)
			}
			indexes = append(indexes, n-1)
		}
		return true, ctrl.RunAction(ctx, "play", func(ctx context.Context) error {
			return u.client.PlayCards(ctx, sess, indexes)
		})

	case "challenge":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bb.CanChallenge(sess, snap) {
			return true, fmt.Errorf("there is nothing to challenge")
		}
		return true, ctrl.RunAction(ctx, "challenge", func(ctx context.Context) error {
			return u.client.Challenge(ctx, sess)
		})

	case "deal":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bb.CanStartFirstRound(sess, snap) && !bb.CanStartNextRound(sess, snap) {
			return true, fmt.Errorf("the table is not ready for a new round")
		}
		return true, ctrl.RunAction(ctx, "deal", func(ctx context.Context) error {
			return u.client.StartNextRound(ctx, sess)
		})
	}
	return false, nil
}
