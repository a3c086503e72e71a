package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/internal/tui"
)

type WatchCmd struct {
	flags *Flags
	app   *spotcheck.App
}

func NewWatchCmd(flags *Flags, app *spotcheck.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Live view of zones and their tasks",
		UsageText: "spotcheck watch",
		Description: `Opens a terminal UI showing every zone with its open task count and
last analysis time, and the selected zone's task table. Polls the
database on tui.poll_interval, so it can run alongside the daemon.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	model := tui.NewModel(cmd.app, cmd.flags.Config.TUI.PollInterval.D())

	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run watch view: %w", err)
	}
	return nil
}
