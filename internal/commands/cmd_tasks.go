package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/core/styles"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

type TasksCmd struct {
	flags *Flags
	app   *spotcheck.App

	// flags
	jsonOutput bool
	zoneRef    string
	status     string
}

// NewTasksCmd creates a new tasks command.
func NewTasksCmd(flags *Flags, app *spotcheck.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app}
}

// Register adds the tasks command tree to the application.
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tasks",
		Usage: "Inspect and resolve tracked cleaning tasks",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List tasks",
				UsageText: "spotcheck tasks ls [--zone ZONE] [--status STATUS] [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
					&cli.StringFlag{
						Name:        "zone",
						Aliases:     []string{"z"},
						Usage:       "filter by zone name or id",
						Destination: &cmd.zoneRef,
					},
					&cli.StringFlag{
						Name:        "status",
						Aliases:     []string{"s"},
						Usage:       "filter by status (pending, completed, auto_completed, ignored, cancelled)",
						Destination: &cmd.status,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:        "complete",
				Usage:       "Mark a pending task as completed",
				UsageText:   "spotcheck tasks complete <task-id>",
				Description: "Records a user-confirmed completion. Completed tasks accept no further transitions.",
				Action:      cmd.runComplete,
			},
			{
				Name:      "ignore",
				Usage:     "Mark a pending task as ignored",
				UsageText: "spotcheck tasks ignore <task-id>",
				Action:    cmd.runIgnore,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a pending task",
				UsageText: "spotcheck tasks cancel <task-id>",
				Action:    cmd.runCancel,
			},
			{
				Name:      "reopen",
				Usage:     "Reopen an auto-completed task",
				UsageText: "spotcheck tasks reopen <task-id>",
				Description: `Returns an auto-completed task to pending and marks the completion
outcome as reverted, which feeds the zone's threshold adaptation. Only
auto-completed tasks can be reopened.`,
				Action: cmd.runReopen,
			},
		},
	})

	return app
}

func (cmd *TasksCmd) runLs(ctx context.Context, c *cli.Command) error {
	filter := task.ListFilter{Status: task.Status(cmd.status)}

	if cmd.status != "" && !filter.Status.IsValid() {
		return fmt.Errorf("unknown status %q", cmd.status)
	}

	if cmd.zoneRef != "" {
		z, err := cmd.app.Zones.Resolve(ctx, cmd.zoneRef)
		if err != nil {
			return fmt.Errorf("resolve zone %q: %w", cmd.zoneRef, err)
		}
		filter.ZoneID = z.ID
	}

	tasks, err := cmd.app.Tasks.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintf(os.Stderr, "No tasks found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tID\tZONE\tDESCRIPTION\tPRI\tCONF\tSEEN\tSTATUS")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\t%s\n",
			styles.StatusIcon(t.Status),
			t.ID,
			t.ZoneID,
			truncate(t.Description, 48),
			priorityLabel(t.Priority),
			t.ConfidenceScore,
			t.DetectionCount,
			t.Status,
		)
	}
	return w.Flush()
}

func (cmd *TasksCmd) runComplete(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}
	if err := cmd.app.Tasks.Complete(ctx, id); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("Task %s completed", id)
	return nil
}

func (cmd *TasksCmd) runIgnore(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}
	if err := cmd.app.Tasks.Ignore(ctx, id); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("Task %s ignored", id)
	return nil
}

func (cmd *TasksCmd) runCancel(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}
	if err := cmd.app.Tasks.Cancel(ctx, id); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("Task %s cancelled", id)
	return nil
}

func (cmd *TasksCmd) runReopen(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}
	if err := cmd.app.Tasks.Reopen(ctx, id); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("Task %s reopened", id)
	return nil
}

func taskIDArg(c *cli.Command) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", fmt.Errorf("task id is required")
	}
	return id, nil
}

func priorityLabel(p int) string {
	switch p {
	case task.PriorityHigh:
		return "high"
	case task.PriorityMedium:
		return "med"
	case task.PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("%d", p)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
