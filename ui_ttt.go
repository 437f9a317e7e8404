// ui_ttt.go
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sapogames/roomkit/games/ttt"
	"github.com/sapogames/roomkit/roomctl"
)

type tttUI struct {
	client *ttt.Client
}

func (u *tttUI) Help() string {
	return "move <1-9> | next"
}

func (u *tttUI) Render(out io.Writer, ctrl *roomctl.Controller[*ttt.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	round := snap.CurrentRound

	if round.ID == "" {
		fmt.Fprintln(out, "Waiting for the first round...")
		return
	}

	printBoard(out, round.Board)

	switch round.Status {
	case ttt.RoundPending:
		if ttt.CanPlay(sess, snap) {
			fmt.Fprintln(out, "Your turn: move <1-9>")
		} else {
			fmt.Fprintf(out, "Waiting for %s...\n", round.NextPlayerNickname)
		}

	case ttt.RoundRevealed:
		if round.WinnerPlayerID == "" {
			fmt.Fprintf(out, "Round %d is a draw.\n", round.RoundNumber)
		} else {
			fmt.Fprintf(out, "Round %d goes to %s.\n", round.RoundNumber, round.WinnerNickname)
		}
		if ttt.CanStartNextRound(sess, snap) {
			fmt.Fprintln(out, "Type next for another round.")
		}
	}
}

func printBoard(out io.Writer, board []string) {
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			idx := row*3 + col
			cell := " "
			if idx < len(board) && board[idx] != "" {
				cell = board[idx]
			}
			cells[col] = cell
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(cells, " | "))
	}
}

func (u *tttUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*ttt.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "move":
		if len(fields) < 2 {
			return true, fmt.Errorf("move where? pick a cell 1-9")
		}
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		cell, err := strconv.Atoi(fields[1])
		if err != nil || cell < 1 || cell > ttt.BoardCells {
			return true, fmt.Errorf("cell must be 1-9")
		}
		if !ttt.CanPlay(sess, snap) {
			return true, fmt.Errorf("it is not your turn")
		}
		return true, ctrl.RunAction(ctx, "move", func(ctx context.Context) error {
			return u.client.SubmitMove(ctx, sess, cell-1)
		})

	case "next":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !ttt.CanStartNextRound(sess, snap) {
			return true, fmt.Errorf("the round is not over yet")
		}
		return true, ctrl.RunAction(ctx, "next", func(ctx context.Context) error {
			return u.client.StartNextRound(ctx, sess)
		})
	}
	return false, nil
}
