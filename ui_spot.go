// ui_spot.go
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/sapogames/roomkit/content"
	"github.com/sapogames/roomkit/games/spot"
	"github.com/sapogames/roomkit/roomctl"
)

type spotUI struct {
	client  *spot.Client
	content *content.Loader

	prompts    []spot.Prompt
	promptsErr error
}

func (u *spotUI) Help() string {
	return "start | vote <player#>"
}

// loadPrompts fetches the prompt deck once per session; a failed load is
// surfaced on the start gate, matching the room behavior.
func (u *spotUI) loadPrompts(ctx context.Context) {
	if u.prompts != nil || u.promptsErr != nil {
		return
	}
	u.prompts, u.promptsErr = u.content.FetchSpotPrompts(ctx)
}

// nextPrompt draws a random prompt not used in this room yet, falling
// back to the full deck once every card has been played.
func (u *spotUI) nextPrompt(snap *spot.Snapshot) (spot.Prompt, bool) {
	if len(u.prompts) == 0 {
		return spot.Prompt{}, false
	}
	used := make(map[string]bool, len(snap.UsedPromptIDs))
	for _, id := range snap.UsedPromptIDs {
		used[id] = true
	}
	var fresh []spot.Prompt
	for _, p := range u.prompts {
		if !used[p.ID] {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		fresh = u.prompts
	}
	return fresh[rand.Intn(len(fresh))], true
}

func (u *spotUI) Render(out io.Writer, ctrl *roomctl.Controller[*spot.Snapshot]) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	sess := ctrl.Session()
	round := snap.CurrentRound

	if u.promptsErr != nil {
		fmt.Fprintf(out, "! prompt deck unavailable: %v\n", u.promptsErr)
	}

	if round == nil {
		if spot.CanStartRound(sess, snap, u.prompts != nil) {
			fmt.Fprintln(out, "Type start to draw the first card.")
		} else {
			fmt.Fprintf(out, "Waiting for players (%d/%d)...\n", snap.NumPlayers, spot.MinPlayers)
		}
		return
	}

	fmt.Fprintf(out, "Round %d: %q\n", round.RoundNumber, round.PromptText)

	switch round.Status {
	case spot.RoundPending:
		fmt.Fprintf(out, "Votes in: %d/%d\n", round.SubmittedCount, round.ParticipantCount)
		switch {
		case !spot.IsParticipant(sess, snap):
			fmt.Fprintln(out, "You joined mid-round; you will play from the next card.")
		case round.SelfVoteTargetPlayerID != "":
			fmt.Fprintln(out, "Your vote is in. Waiting for the rest.")
		default:
			fmt.Fprintln(out, "Vote with: vote <player#>")
			for i, p := range snap.SpotPlayers {
				fmt.Fprintf(out, "  %d: %s\n", i+1, p.Nickname)
			}
		}

	case spot.RoundRevealed:
		for _, vote := range round.RevealedVotes {
			fmt.Fprintf(out, "  %s voted for %s\n", vote.VoterNickname, vote.TargetNickname)
		}
		if round.WinnerPlayerID != "" {
			fmt.Fprintf(out, "The card goes to %s (%d votes).\n", round.WinnerNickname, round.WinningVoteCount)
		} else if len(round.TiedNicknames) > 0 {
			fmt.Fprintf(out, "Tie between %s; nobody takes the card.\n", strings.Join(round.TiedNicknames, ", "))
		}
		if spot.CanStartRound(sess, snap, u.prompts != nil) {
			fmt.Fprintln(out, "Type start for the next card.")
		}
	}
}

func (u *spotUI) Handle(ctx context.Context, ctrl *roomctl.Controller[*spot.Snapshot], line string) (bool, error) {
	fields := strings.Fields(line)
	sess := ctrl.Session()
	snap, _ := ctrl.Snapshot()

	switch fields[0] {
	case "start":
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		u.loadPrompts(ctx)
		if u.promptsErr != nil {
			return true, u.promptsErr
		}
		if !spot.CanStartRound(sess, snap, u.prompts != nil) {
			return true, fmt.Errorf("the room is not ready for a new card")
		}
		prompt, ok := u.nextPrompt(snap)
		if !ok {
			return true, content.ErrNoPrompts
		}
		return true, ctrl.RunAction(ctx, "start", func(ctx context.Context) error {
			return u.client.StartRound(ctx, sess, prompt)
		})

	case "vote":
		if len(fields) < 2 {
			return true, fmt.Errorf("vote for whom? pick a player number")
		}
		if sess == nil {
			return true, roomctl.ErrNoSession
		}
		if !spot.CanVote(sess, snap) {
			return true, fmt.Errorf("you cannot vote right now")
		}
		target, err := pickPlayerIndex(fields[1], len(snap.SpotPlayers))
		if err != nil {
			return true, err
		}
		targetID := snap.SpotPlayers[target].ID
		return true, ctrl.RunAction(ctx, "vote", func(ctx context.Context) error {
			return u.client.SubmitVote(ctx, sess, targetID)
		})
	}
	return false, nil
}
