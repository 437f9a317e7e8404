// ui_imp.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sapogames/roomkit/content"
	"github.com/sapogames/roomkit/games/imp"
	"github.com/sapogames/roomkit/roomctl"
)

type impUI struct {
	client  *imp.Client
	content *content.Loader
	out     io.Writer

	categories    []imp.Category
	categoriesErr error
}

func (u *impUI) Help() string {
	return "categories | start <category#> | clue <text> | vote <player#> | advance"
}

func (u *impUI) loadCategories(ctx context.Context) {
	if u.categories != nil || u.categoriesErr != nil {
		return
	}
	u.categories, u.categoriesErr = u.content.FetchImpCategories(ctx)
}

func (u *impUI) Render(out io.Writer, ctrl *roomctl.Controller[*imp.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	match := snap.CurrentMatch

	if u.categoriesErr != nil {
		fmt.Fprintf(out, "! category deck unavailable: %v\n", u.categoriesErr)
	}

	if match == nil || match.Phase == imp.PhaseFinished {
		if match != nil {
			renderImpResult(out, match)
		}
		if imp.CanStartMatch(sess, snap, u.categories != nil) {
			fmt.Fprintln(out, "Type categories to browse decks, then start <category#>.")
		} else {
			fmt.Fprintf(out, "Waiting for the host to start (%d/%d players)...\n", snap.NumPlayers, imp.MinPlayers)
		}
		return
	}

	if imp.IsSpectator(sess, snap) {
		fmt.Fprintln(out, "Match in progress. You joined late and will play from the next match.")
	} else if match.SelfRole != "" {
		if match.SelfRole == imp.Impostor {
			fmt.Fprintln(out, "You are the IMPOSTOR. Blend in.")
		} else {
			fmt.Fprintf(out, "Your word: %s\n", match.SelfWord)
		}
	}

	fmt.Fprintf(out, "Match %d, round %d. Category: %s.\n", match.MatchNumber, match.RoundNumber, match.CategoryLabel)
	for _, clue := range match.Clues {
		fmt.Fprintf(out, "  %s: %q\n", clue.Nickname, clue.ClueText)
	}

	switch match.Phase {
	case imp.PhaseClue:
		if imp.CanSubmitClue(sess, snap) {
			fmt.Fprintln(out, "Your turn: clue <text>")
		} else {
			fmt.Fprintf(out, "Waiting for %s's clue...\n", match.CurrentTurnNickname)
		}

	case imp.PhaseVote:
		fmt.Fprintf(out, "Votes in: %d/%d\n", len(match.SubmittedVotePlayerIDs), match.ActivePlayerCount)
		if imp.CanVote(sess, snap) && match.SelfVoteTargetPlayerID == "" {
			fmt.Fprintln(out, "Vote with: vote <player#>")
			for i, p := range snap.Players {
				fmt.Fprintf(out, "  %d: %s\n", i+1, p.Nickname)
			}
		}

	case imp.PhaseRevealed:
		renderImpResult(out, match)
		if imp.CanAdvanceRound(sess, snap) {
			fmt.Fprintln(out, "Type advance to continue.")
		}
	}
}

func renderImpResult(out io.Writer, match *imp.Match) {
	if match.EliminatedPlayerID != "" {
		fmt.Fprintf(out, "%s was voted out.\n", match.EliminatedNickname)
	} else if len(match.VoteTiedNicknames) > 0 {
		fmt.Fprintf(out, "Vote tied between %s; nobody is out.\n", strings.Join(match.VoteTiedNicknames, ", "))
	}
	switch match.WinnerTeam {
	case imp.TeamCrew:
		fmt.Fprintf(out, "The crew wins! The impostor was %s. The word was %q.\n", match.ImpostorNickname, match.RevealedWord)
	case imp.TeamImpostor:
		fmt.Fprintf(out, "The impostor %s wins! The word was %q.\n", match.ImpostorNickname, match.RevealedWord)
	}
}

func (u *impUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*imp.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "categories":
		u.loadCategories(ctx)
		if u.categoriesErr != nil {
			return true, u.categoriesErr
		}
		for i, c := range u.categories {
			fmt.Fprintf(u.out, "  %d: %s (%d words)\n", i+1, c.Label, len(c.Words))
		}
		return true, nil

	case "start":
		if len(fields) < 2 {
			return true, fmt.Errorf("start which category? see categories")
		}
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		u.loadCategories(ctx)
		if u.categoriesErr != nil {
			return true, u.categoriesErr
		}
		if !imp.CanStartMatch(sess, snap, u.categories != nil) {
			return true, fmt.Errorf("only the host can start, with at least %d players", imp.MinPlayers)
		}
		idx, err := pickPlayerIndex(fields[1], len(u.categories))
		if err != nil {
			return true, fmt.Errorf("category must be 1-%d", len(u.categories))
		}
		category := u.categories[idx]
		return true, ctrl.RunAction(ctx, "start", func(ctx context.Context) error {
			return u.client.StartMatch(ctx, sess, category)
		})

	case "clue":
		if len(fields) < 2 {
			return true, fmt.Errorf("clue needs a word")
		}
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !imp.CanSubmitClue(sess, snap) {
			return true, fmt.Errorf("it is not your turn to give a clue")
		}
		text := strings.Join(fields[1:], " ")
		return true, ctrl.RunAction(ctx, "clue", func(ctx context.Context) error {
			return u.client.SubmitClue(ctx, sess, text)
		})

	case "vote":
		if len(fields) < 2 {
			return true, fmt.Errorf("vote for whom? pick a player number")
		}
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !imp.CanVote(sess, snap) {
			return true, fmt.Errorf("you cannot vote right now")
		}
		target, err := pickPlayerIndex(fields[1], len(snap.Players))
		if err != nil {
			return true, err
		}
		targetID := snap.Players[target].ID
		return true, ctrl.RunAction(ctx, "vote", func(ctx context.Context) error {
			return u.client.SubmitVote(ctx, sess, targetID)
		})

	case "advance":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !imp.CanAdvanceRound(sess, snap) {
			return true, fmt.Errorf("only the host can advance after a reveal")
		}
		return true, ctrl.RunAction(ctx, "advance", func(ctx context.Context) error {
			return u.client.AdvanceRound(ctx, sess)
		})
	}
	return false, nil
}
