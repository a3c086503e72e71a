package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *spotcheck.App

	// flags
	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command.
func NewNotificationsCmd(flags *Flags, app *spotcheck.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command tree to the application.
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "notifications",
		Usage: "Inspect engine notifications",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List notifications, newest first",
				UsageText: "spotcheck notifications ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "clear",
				Usage:     "Delete all notifications",
				UsageText: "spotcheck notifications clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) runLs(ctx context.Context, c *cli.Command) error {
	notifications, err := cmd.app.Stores.Notifications.List(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, n := range notifications {
			if err := iojson.WriteLine(out, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(notifications) == 0 {
		fmt.Fprintf(os.Stderr, "No notifications\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tLEVEL\tZONE\tMESSAGE")
	for _, n := range notifications {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			n.CreatedAt.Format("2006-01-02 15:04"), n.Level, n.ZoneID, n.Message)
	}
	return w.Flush()
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, c *cli.Command) error {
	count, err := cmd.app.Stores.Notifications.Count(ctx)
	if err != nil {
		return fmt.Errorf("count notifications: %w", err)
	}

	if err := cmd.app.Stores.Notifications.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}

	printer.Ctx(ctx).Successf("Cleared %d notification(s)", count)
	return nil
}
