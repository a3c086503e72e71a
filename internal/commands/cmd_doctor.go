package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/core/doctor"
	"github.com/colonyops/spotcheck/internal/core/styles"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

type DoctorCmd struct {
	flags  *Flags
	app    *spotcheck.App
	format string
}

func NewDoctorCmd(flags *Flags, app *spotcheck.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your spotcheck setup",
		UsageText:   "spotcheck doctor [options]",
		Description: "Runs diagnostic checks on configuration, data directory, database, and zones.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	checks := []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.ConfigPath, cmd.flags.DataDir),
		doctor.NewDataDirCheck(cmd.flags.DataDir),
		doctor.NewDatabaseCheck(func(ctx context.Context) ([]int, error) {
			return db.PendingMigrations(ctx, cmd.app.DB.Conn())
		}),
		doctor.NewZonesCheck(cmd.app.Stores.Zones, cmd.app.Stores.Analyses),
	}

	results := doctor.RunAll(ctx, checks)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	if err := iojson.WriteWith(c.Root().Writer, os.Stderr, out); err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputText(results []doctor.Result) error {
	w := os.Stderr
	divider := styles.MutedStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Spotcheck Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, styles.ValueStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.PassStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.WarnStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.FailStyle.Render("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	summary := fmt.Sprintf("%s  %s  %s",
		styles.PassStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.WarnStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.FailStyle.Render(fmt.Sprintf("%d failed", failed)),
	)
	_, _ = fmt.Fprintln(w, summary)

	if fixable := doctor.CountFixable(results); fixable > 0 {
		_, _ = fmt.Fprintln(w)
		hint := styles.MutedStyle.Render(fmt.Sprintf("%d issue(s) may be fixed by running 'spotcheck init'", fixable))
		_, _ = fmt.Fprintln(w, hint)
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
