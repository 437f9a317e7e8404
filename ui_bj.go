// ui_bj.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sapogames/roomkit/games/bj"
	"github.com/sapogames/roomkit/roomctl"
)

type bjUI struct {
	client *bj.Client
}

func (u *bjUI) Help() string {
	return "hit | stand | deal"
}

func (u *bjUI) Render(out io.Writer, ctrl *roomctl.Controller[*bj.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	round := snap.CurrentRound

	if round == nil {
		if bj.CanStartRound(sess, snap) {
			fmt.Fprintln(out, "Type deal to start the first round.")
		} else {
			fmt.Fprintln(out, "Waiting for more players...")
		}
		return
	}

	switch round.Status {
	case bj.RoundPlayerTurn:
		fmt.Fprintf(out, "Dealer shows: %s\n", strings.Join(round.DealerCards, " "))
	default:
		fmt.Fprintf(out, "Dealer: %s (%d)\n", strings.Join(round.DealerCards, " "), round.DealerTotal)
	}

	for _, hand := range round.PlayerHands {
		mark := ""
		if sess != nil && hand.PlayerID == sess.PlayerID {
			mark = " (you)"
		}
		status := hand.TurnStatus
		if hand.Outcome != "" {
			status = hand.Outcome
		}
		fmt.Fprintf(out, "  %s%s: %s (%d) [%s]\n", hand.Nickname, mark, strings.Join(hand.Cards, " "), hand.Total, status)
	}

	switch round.Status {
	case bj.RoundPlayerTurn:
		if bj.CanPlay(sess, snap) {
			fmt.Fprintln(out, "Your move: hit or stand")
		}
	case bj.RoundDealerTurn:
		fmt.Fprintln(out, "Dealer is playing...")
	case bj.RoundRevealed:
		if bj.CanStartNextRound(sess, snap) {
			fmt.Fprintln(out, "Type deal for the next round.")
		}
	}
}

func (u *bjUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*bj.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "hit", "stand":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bj.CanPlay(sess, snap) {
			return true, fmt.Errorf("your hand is not in play")
		}
		action := bj.Action(fields[0])
		return true, ctrl.RunAction(ctx, fields[0], func(ctx context.Context) error {
			return u.client.SubmitAction(ctx, sess, action)
		})

	case "deal":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bj.CanStartRound(sess, snap) && !bj.CanStartNextRound(sess, snap) {
			return true, fmt.Errorf("the table is not ready for a new round")
		}
		return true, ctrl.RunAction(ctx, "deal", func(ctx context.Context) error {
			return u.client.StartNextRound(ctx, sess)
		})
	}
	return false, nil
}
