package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

type ZonesCmd struct {
	flags *Flags
	app   *spotcheck.App

	// flags
	jsonOutput   bool
	camera       string
	frequency    time.Duration
	maxTasks     int
	historyLimit int
}

// NewZonesCmd creates a new zones command.
func NewZonesCmd(flags *Flags, app *spotcheck.App) *ZonesCmd {
	return &ZonesCmd{flags: flags, app: app}
}

// Register adds the zones command tree to the application.
func (cmd *ZonesCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "zones",
		Usage: "Manage monitored zones",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List all zones",
				UsageText: "spotcheck zones ls [--json]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Add a new zone",
				UsageText: "spotcheck zones add <display-name> [options]",
				Description: `Creates a zone named after the slugified display name, enabled by
default. "Living Room" becomes zone "living-room".`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "camera",
						Usage:       "camera entity id for the vision integration",
						Destination: &cmd.camera,
					},
					&cli.DurationFlag{
						Name:        "frequency",
						Usage:       "reconciliation interval (defaults to scheduler.default_frequency)",
						Destination: &cmd.frequency,
					},
					&cli.IntFlag{
						Name:        "max-tasks",
						Usage:       "max accepted detections per cycle (0 = engine default)",
						Destination: &cmd.maxTasks,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:          "rm",
				Usage:         "Remove a zone and all of its tasks",
				UsageText:     "spotcheck zones rm <zone>",
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runRm,
			},
			{
				Name:          "enable",
				Usage:         "Enable scheduling for a zone",
				UsageText:     "spotcheck zones enable <zone>",
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runEnable,
			},
			{
				Name:          "disable",
				Usage:         "Disable scheduling for a zone",
				UsageText:     "spotcheck zones disable <zone>",
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runDisable,
			},
			{
				Name:          "summary",
				Usage:         "Show task counts and analysis state for a zone",
				UsageText:     "spotcheck zones summary <zone> [--json]",
				Flags:         []cli.Flag{jsonFlag},
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runSummary,
			},
			{
				Name:      "history",
				Usage:     "Show a zone's analysis history, newest first",
				UsageText: "spotcheck zones history <zone> [--limit N] [--json]",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.IntFlag{
						Name:        "limit",
						Usage:       "max records to show (0 = all)",
						Value:       20,
						Destination: &cmd.historyLimit,
					},
				},
				ShellComplete: ZoneNameCompleter(cmd.app),
				Action:        cmd.runHistory,
			},
		},
	})

	return app
}

func (cmd *ZonesCmd) runLs(ctx context.Context, c *cli.Command) error {
	zones, err := cmd.app.Zones.List(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, z := range zones {
			if err := iojson.WriteLine(out, z); err != nil {
				return fmt.Errorf("encode zone: %w", err)
			}
		}
		return nil
	}

	if len(zones) == 0 {
		fmt.Fprintf(os.Stderr, "No zones found. Add one with 'spotcheck zones add'\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID\tENABLED\tFREQUENCY\tMAX TASKS")
	for _, z := range zones {
		maxTasks := "default"
		if z.MaxTasksPerAnalysis > 0 {
			maxTasks = fmt.Sprintf("%d", z.MaxTasksPerAnalysis)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", z.Name, z.ID, z.Enabled, z.UpdateFrequency, maxTasks)
	}
	return w.Flush()
}

func (cmd *ZonesCmd) runAdd(ctx context.Context, c *cli.Command) error {
	displayName := c.Args().First()
	if displayName == "" {
		return fmt.Errorf("display name is required")
	}

	frequency := cmd.frequency
	if frequency == 0 {
		frequency = cmd.flags.Config.Scheduler.DefaultFrequency.D()
	}

	z, err := cmd.app.Zones.Add(ctx, spotcheck.AddOptions{
		DisplayName:         displayName,
		CameraEntity:        cmd.camera,
		UpdateFrequency:     frequency,
		MaxTasksPerAnalysis: cmd.maxTasks,
	})
	if err != nil {
		return fmt.Errorf("add zone: %w", err)
	}

	printer.Ctx(ctx).Successf("Created zone %q (%s), reconciling every %s", z.Name, z.ID, z.UpdateFrequency)
	return nil
}

func (cmd *ZonesCmd) runRm(ctx context.Context, c *cli.Command) error {
	z, err := cmd.resolveArg(ctx, c)
	if err != nil {
		return err
	}

	if err := cmd.app.Zones.Remove(ctx, z.ID); err != nil {
		return fmt.Errorf("remove zone: %w", err)
	}

	printer.Ctx(ctx).Successf("Removed zone %q and all of its tasks", z.Name)
	return nil
}

func (cmd *ZonesCmd) runEnable(ctx context.Context, c *cli.Command) error {
	return cmd.setEnabled(ctx, c, true)
}

func (cmd *ZonesCmd) runDisable(ctx context.Context, c *cli.Command) error {
	return cmd.setEnabled(ctx, c, false)
}

func (cmd *ZonesCmd) setEnabled(ctx context.Context, c *cli.Command, enabled bool) error {
	z, err := cmd.resolveArg(ctx, c)
	if err != nil {
		return err
	}

	if err := cmd.app.Zones.SetEnabled(ctx, z.ID, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	printer.Ctx(ctx).Successf("Zone %q %s", z.Name, state)
	return nil
}

func (cmd *ZonesCmd) runSummary(ctx context.Context, c *cli.Command) error {
	z, err := cmd.resolveArg(ctx, c)
	if err != nil {
		return err
	}

	sum, err := cmd.app.Zones.Summary(ctx, z)
	if err != nil {
		return fmt.Errorf("zone summary: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, sum)
	}

	p := printer.Ctx(ctx)
	p.Section(z.DisplayName)
	p.Printf("  name:            %s", z.Name)
	p.Printf("  enabled:         %t", z.Enabled)
	p.Printf("  frequency:       %s", z.UpdateFrequency)

	p.Printf("  tasks:           %s", formatStatusCounts(sum.StatusCounts))
	p.Printf("  open priorities: %s", formatPriorityCounts(sum.PriorityCounts))
	p.Printf("  completion rate: %.0f%%", sum.CompletionRate*100)

	if sum.OldestPendingAge > 0 {
		p.Printf("  oldest pending:  %s", sum.OldestPendingAge.Round(time.Minute))
	}
	if sum.LastAnalysisAt != nil {
		p.Printf("  last analysis:   %s", sum.LastAnalysisAt.Format(time.RFC3339))
	} else {
		p.Printf("  last analysis:   never")
	}
	return nil
}

func (cmd *ZonesCmd) runHistory(ctx context.Context, c *cli.Command) error {
	z, err := cmd.resolveArg(ctx, c)
	if err != nil {
		return err
	}

	records, err := cmd.app.Zones.History(ctx, z.ID, cmd.historyLimit)
	if err != nil {
		return fmt.Errorf("zone history: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range records {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "No analyses recorded for zone %q\n", z.Name)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tCYCLE\tDETECTED\tCREATED\tREINFORCED\tAUTO-DONE\tCLEANLINESS\tDURATION")
	for _, r := range records {
		cleanliness := "-"
		if r.CleanlinessScore >= 0 {
			cleanliness = fmt.Sprintf("%.2f", r.CleanlinessScore)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.CycleID,
			r.Detected, r.Created, r.Reinforced, r.AutoCompleted,
			cleanliness,
			r.Duration.Round(time.Millisecond),
		)
	}
	return w.Flush()
}

// resolveArg resolves the first positional argument to a zone by name or ID.
func (cmd *ZonesCmd) resolveArg(ctx context.Context, c *cli.Command) (zone.Zone, error) {
	ref := c.Args().First()
	if ref == "" {
		return zone.Zone{}, fmt.Errorf("zone name or id is required")
	}
	z, err := cmd.app.Zones.Resolve(ctx, ref)
	if err != nil {
		return zone.Zone{}, fmt.Errorf("resolve zone %q: %w", ref, err)
	}
	return z, nil
}

func formatStatusCounts(counts map[task.Status]int64) string {
	order := []task.Status{
		task.StatusPending,
		task.StatusCompleted,
		task.StatusAutoCompleted,
		task.StatusIgnored,
		task.StatusCancelled,
	}
	s := ""
	for _, status := range order {
		if n, ok := counts[status]; ok && n > 0 {
			if s != "" {
				s += ", "
			}
			s += fmt.Sprintf("%d %s", n, status)
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

func formatPriorityCounts(counts map[int]int64) string {
	names := map[int]string{
		task.PriorityHigh:   "high",
		task.PriorityMedium: "medium",
		task.PriorityLow:    "low",
	}
	s := ""
	for _, pri := range []int{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		if n, ok := counts[pri]; ok && n > 0 {
			if s != "" {
				s += ", "
			}
			s += fmt.Sprintf("%d %s", n, names[pri])
		}
	}
	if s == "" {
		return "none"
	}
	return s
}
