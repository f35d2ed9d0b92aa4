package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the scene headless and print a summary",
		Long: `simulate drives the scene without a window. With --ticks it steps a fixed
number of frames as fast as possible; otherwise it runs in real time for
--duration or until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			d, err := env.newDirector()
			if err != nil {
				return err
			}
			defer d.Close()

			d.Subscribe(func(ev game.BodySelected) {
				env.log.Info().Str("body", ev.ID).Bool("warped", ev.Warped).Msg("body selected")
			})

			if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
				m, ok := game.ParseMode(mode)
				if !ok {
					return fmt.Errorf("unknown mode %q", mode)
				}
				d.SetMode(m)
			}
			if text, _ := cmd.Flags().GetString("autopilot"); text != "" {
				if _, ok := d.Autopilot(text); !ok {
					env.log.Warn().Str("command", text).Msg("autopilot found no matching hub")
				}
			}
			if id, _ := cmd.Flags().GetString("select"); id != "" {
				if err := d.ActivateLabel(id); err != nil {
					return err
				}
			}

			ticks, _ := cmd.Flags().GetInt("ticks")
			if ticks > 0 {
				step := time.Second / time.Duration(env.cfg.Loop.FrameRate)
				for range ticks {
					d.Tick(step)
				}
			} else {
				duration, _ := cmd.Flags().GetDuration("duration")
				ctx, cancel := signalContext(cmd.Context())
				defer cancel()
				ctx, stop := context.WithTimeout(ctx, duration)
				defer stop()
				if err := d.Run(ctx, nil); err != nil &&
					!errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
					return err
				}
			}
			return printSummary(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().Int("ticks", 0, "Step this many frames instead of running in real time")
	cmd.Flags().Duration("duration", 10*time.Second, "Real-time run length")
	cmd.Flags().String("mode", "", "Camera mode (orbit, freefly, directory)")
	cmd.Flags().String("autopilot", "", "Free-text navigation command issued at start")
	cmd.Flags().String("select", "", "Body id to select at start")
	return cmd
}

func printSummary(w io.Writer, d *game.SceneDirector) error {
	st := d.Stats()
	_, err := fmt.Fprintf(w,
		"tier:       %s\nticks:      %d\nbodies:     %d\nfriendly:   %d\nhostile:    %d\nkills:      %d\nwarps:      %d\nselections: %d\n",
		d.Tier(), st.Ticks, len(d.Orbit.Bodies()),
		st.Counts[game.FactionFriendly], st.Counts[game.FactionHostile],
		st.Kills, st.Warps, st.Selections)
	return err
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
