// ui_bjd.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sapogames/roomkit/games/bjd"
	"github.com/sapogames/roomkit/roomctl"
)

type bjdUI struct {
	client *bjd.Client
}

func (u *bjdUI) Help() string {
	return "hit | stand | deal"
}

func (u *bjdUI) Render(out io.Writer, ctrl *roomctl.Controller[*bjd.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	round := snap.CurrentRound

	if round == nil {
		if bjd.CanStartRound(sess, snap) {
			fmt.Fprintln(out, "Type deal to start the duel.")
		} else {
			fmt.Fprintln(out, "Waiting for an opponent...")
		}
		return
	}

	if self := snap.SelfHand(); self != nil {
		fmt.Fprintf(out, "  You: %s (%d) [%s]\n", strings.Join(self.Cards, " "), self.Total, handLabel(self))
	}
	if opp := snap.OpponentHand(); opp != nil {
		if opp.Revealed {
			fmt.Fprintf(out, "  %s: %s (%d) [%s]\n", opp.Nickname, strings.Join(opp.Cards, " "), opp.Total, handLabel(opp))
		} else {
			fmt.Fprintf(out, "  %s: %d hidden cards\n", opp.Nickname, opp.CardCount)
		}
	}

	switch round.Status {
	case bjd.RoundPending:
		if bjd.CanPlay(sess, snap) {
			fmt.Fprintln(out, "Your move: hit or stand")
		} else {
			fmt.Fprintln(out, "Waiting for the reveal...")
		}
	case bjd.RoundRevealed:
		if bjd.CanStartNextRound(sess, snap) {
			fmt.Fprintln(out, "Type deal for a rematch.")
		}
	}
}

func handLabel(hand *bjd.Hand) string {
	if hand.Outcome != "" {
		return hand.Outcome
	}
	return hand.TurnStatus
}

func (u *bjdUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*bjd.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "hit", "stand":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bjd.CanPlay(sess, snap) {
			return true, fmt.Errorf("your hand is not in play")
		}
		action := bjd.Action(fields[0])
		return true, ctrl.RunAction(ctx, fields[0], func(ctx context.Context) error {
			return u.client.SubmitAction(ctx, sess, action)
		})

	case "deal":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !bjd.CanStartRound(sess, snap) && !bjd.CanStartNextRound(sess, snap) {
			return true, fmt.Errorf("the duel is not ready for a new round")
		}
		return true, ctrl.RunAction(ctx, "deal", func(ctx context.Context) error {
			return u.client.StartNextRound(ctx, sess)
		})
	}
	return false, nil
}
