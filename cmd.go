// cmd.go
package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/games/bb"
	"github.com/sapogames/roomkit/games/bj"
	"github.com/sapogames/roomkit/games/bjd"
	"github.com/sapogames/roomkit/games/imp"
	"github.com/sapogames/roomkit/games/rps"
	"github.com/sapogames/roomkit/games/spot"
	"github.com/sapogames/roomkit/games/ttt"
	"github.com/sapogames/roomkit/roomctl"
)

const releaseVersion = "0.1.0"

type cliFlags struct {
	roomCode     string
	nickname     string
	dataDir      string
	backendURL   string
	anonKey      string
	metricsAddr  string
	pollInterval time.Duration
}

func newCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:           "roomkit",
		Short:         "Terminal client for the sapogames party rooms.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := cmd.PersistentFlags()
	pf.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	pf.StringVarP(&flags.roomCode, "room", "r", "", "room code to enter directly")
	pf.StringVarP(&flags.nickname, "nickname", "n", "", "nickname to prefill (env: SAPOGAMES_NICKNAME)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory for the local session store")
	pf.StringVar(&flags.backendURL, "backend-url", "", "backend base URL (env: SAPOGAMES_BACKEND_URL)")
	pf.StringVar(&flags.anonKey, "anon-key", "", "backend anon key (env: SAPOGAMES_BACKEND_ANON_KEY)")
	pf.StringVar(&flags.metricsAddr, "metrics", "", "address to serve prometheus metrics on")
	pf.DurationVar(&flags.pollInterval, "poll-interval", 0, "snapshot poll interval")

	cmd.AddCommand(
		newGameCmd(flags, rps.Profile(), runRPS),
		newGameCmd(flags, ttt.Profile(), runTTT),
		newGameCmd(flags, bj.Profile(), runBJ),
		newGameCmd(flags, bjd.Profile(), runBJD),
		newGameCmd(flags, bb.Profile(), runBB),
		newGameCmd(flags, spot.Profile(), runSpot),
		newGameCmd(flags, imp.Profile(), runImp),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("roomkit v{{.Version}}\n")

	return cmd
}

func newGameCmd(flags *cliFlags, profile games.Profile, run func(cmd *cobra.Command, flags *cliFlags) error) *cobra.Command {
	return &cobra.Command{
		Use:   profile.Slug,
		Short: "Play " + profile.Title,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags)
		},
	}
}

func runRPS(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := rps.New(env.gateway)
	ctrl := roomctl.New(rps.Profile(), client.Actions(), env.options())
	return runSession(cmd.Context(), env, ctrl, &rpsUI{client: client})
}

func runTTT(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := ttt.New(env.gateway)
	ctrl := roomctl.New(ttt.Profile(), client.Actions(), env.options())
	return runSession(cmd.Context(), env, ctrl, &tttUI{client: client})
}

func runBJ(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := bj.New(env.gateway)
	ctrl := roomctl.New(bj.Profile(), client.Actions(), env.options())
	return runSession(cmd.Context(), env, ctrl, &bjUI{client: client})
}

func runBJD(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := bjd.New(env.gateway)
	ctrl := roomctl.New(bjd.Profile(), client.Actions(), env.options())
	return runSession(cmd.Context(), env, ctrl, &bjdUI{client: client})
}

func runBB(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := bb.New(env.gateway)
	ctrl := roomctl.New(bb.Profile(), client.Actions(), env.options())
	return runSession(cmd.Context(), env, ctrl, &bbUI{client: client})
}

func runSpot(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := spot.New(env.gateway)
	ctrl := roomctl.New(spot.Profile(), client.Actions(), env.options())
	ui := &spotUI{client: client, content: env.content}
	return runSession(cmd.Context(), env, ctrl, ui)
}

func runImp(cmd *cobra.Command, flags *cliFlags) error {
	env, err := newPlayEnv(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	client := imp.New(env.gateway)
	ctrl := roomctl.New(imp.Profile(), client.Actions(), env.options())
	ui := &impUI{client: client, content: env.content, out: env.out}
	return runSession(cmd.Context(), env, ctrl, ui)
}
