package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

type ThresholdsCmd struct {
	flags *Flags
	app   *spotcheck.App

	// flags
	jsonOutput bool
	all        bool
}

// NewThresholdsCmd creates a new thresholds command.
func NewThresholdsCmd(flags *Flags, app *spotcheck.App) *ThresholdsCmd {
	return &ThresholdsCmd{flags: flags, app: app}
}

// Register adds the thresholds command tree to the application.
func (cmd *ThresholdsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "thresholds",
		Usage: "Inspect and tune per-zone decision thresholds",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a zone's effective thresholds",
				UsageText: "spotcheck thresholds show <zone> [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runShow,
			},
			{
				Name:      "adjust",
				Usage:     "Re-derive thresholds from the trailing outcome window",
				UsageText: "spotcheck thresholds adjust <zone> | --all",
				Description: `Computes auto-completion accuracy over the trailing 30-day outcome
window and nudges the zone's thresholds: above 90% accuracy loosens
them, below 70% tightens them. The daemon runs this sweep on its own;
the command forces it immediately.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "all",
						Usage:       "adjust every enabled zone",
						Destination: &cmd.all,
					},
				},
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runAdjust,
			},
		},
	})

	return app
}

func (cmd *ThresholdsCmd) runShow(ctx context.Context, c *cli.Command) error {
	ref := c.Args().First()
	if ref == "" {
		return fmt.Errorf("zone name or id is required")
	}

	z, err := cmd.app.Zones.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("resolve zone %q: %w", ref, err)
	}

	ths, err := cmd.app.Thresholds.Show(ctx, z.ID)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, ths)
	}

	p := printer.Ctx(ctx)
	p.Section(z.DisplayName)
	p.Printf("  similarity threshold:        %.2f", ths.Similarity)
	p.Printf("  resolution confidence floor: %.2f", ths.ResolutionFloor)
	if ths.AdjustedAt.IsZero() {
		p.Printf("  last adjusted:               never (defaults)")
	} else {
		p.Printf("  last adjusted:               %s", ths.AdjustedAt.Format(time.RFC3339))
	}
	return nil
}

func (cmd *ThresholdsCmd) runAdjust(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.all {
		if err := cmd.app.Thresholds.AdjustAll(ctx); err != nil {
			return err
		}
		p.Success("Adjusted thresholds for all enabled zones")
		return nil
	}

	ref := c.Args().First()
	if ref == "" {
		return fmt.Errorf("zone name or id is required (or pass --all)")
	}

	z, err := cmd.app.Zones.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("resolve zone %q: %w", ref, err)
	}

	ths, err := cmd.app.Thresholds.AdjustZone(ctx, z.ID)
	if err != nil {
		return err
	}

	p.Successf("Zone %q: similarity %.2f, resolution floor %.2f", z.Name, ths.Similarity, ths.ResolutionFloor)
	return nil
}
