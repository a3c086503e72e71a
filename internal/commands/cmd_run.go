package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/internal/spotcheck/detect"
)

type RunCmd struct {
	flags *Flags
	app   *spotcheck.App

	// flags
	adaptInterval time.Duration
}

// NewRunCmd creates a new run command.
func NewRunCmd(flags *Flags, app *spotcheck.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the reconciliation daemon",
		UsageText: "spotcheck run [options]",
		Description: `Starts one reconciliation loop per enabled zone at its update frequency,
collecting detection batches from the inbox directory, plus a periodic
threshold-adaptation sweep. Runs until interrupted.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "adapt-interval",
				Usage:       "threshold adaptation sweep interval (defaults to scheduler.adapt_interval)",
				Destination: &cmd.adaptInterval,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	adaptInterval := cmd.adaptInterval
	if adaptInterval == 0 {
		adaptInterval = cfg.Scheduler.AdaptInterval.D()
	}

	if err := os.MkdirAll(cfg.InboxDir(), 0o755); err != nil {
		return err
	}

	source := detect.NewFileInbox(cfg.InboxDir(), log.Logger)
	scheduler := spotcheck.NewScheduler(
		cmd.app.Stores.Zones,
		source,
		cmd.app.Reconciler,
		cmd.app.Thresholds,
		adaptInterval,
		log.Logger,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := printer.Ctx(ctx)
	p.Infof("watching inbox %s, press ctrl-c to stop", cfg.InboxDir())

	err := scheduler.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	p.Infof("daemon stopped")
	return nil
}
