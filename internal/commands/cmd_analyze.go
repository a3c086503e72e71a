package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

// analyzeInput is the JSON payload for one manual reconciliation pass.
// It matches the inbox drop file format.
type analyzeInput struct {
	Detections       []task.Detection `json:"detections"`
	CleanlinessScore *float64         `json:"cleanliness_score"`
}

type AnalyzeCmd struct {
	flags  *Flags
	app    *spotcheck.App
	reader iojson.FileReader[analyzeInput]

	// flags
	zoneRef    string
	jsonOutput bool
}

// NewAnalyzeCmd creates a new analyze command.
func NewAnalyzeCmd(flags *Flags, app *spotcheck.App) *AnalyzeCmd {
	return &AnalyzeCmd{flags: flags, app: app}
}

// Register adds the analyze command to the application.
func (cmd *AnalyzeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "analyze",
		Usage:     "Run one reconciliation pass from JSON detections",
		UsageText: "spotcheck analyze --zone ZONE [-f detections.json]",
		Description: `Reads a detection batch from stdin or --file and reconciles it against
the zone's open tasks: matched detections reinforce, unmatched ones
create tasks, and open tasks absent from the batch may auto-complete.

Input format:
  {"detections": [{"description": "wipe the counter", "confidence": 0.9}],
   "cleanliness_score": 0.7}`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "zone",
				Aliases:     []string{"z"},
				Usage:       "zone name or id",
				Required:    true,
				Destination: &cmd.zoneRef,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the analysis result as JSON",
				Destination: &cmd.jsonOutput,
			},
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AnalyzeCmd) run(ctx context.Context, c *cli.Command) error {
	z, err := cmd.app.Zones.Resolve(ctx, cmd.zoneRef)
	if err != nil {
		return fmt.Errorf("resolve zone %q: %w", cmd.zoneRef, err)
	}

	input, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	cleanliness := -1.0
	if input.CleanlinessScore != nil {
		cleanliness = *input.CleanlinessScore
	}

	result, err := cmd.app.Reconciler.Run(ctx, z, input.Detections, cleanliness)
	if err != nil {
		return fmt.Errorf("reconcile zone %q: %w", z.Name, err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, result)
	}

	p := printer.Ctx(ctx)
	p.Successf("Cycle %s: %d detected, %d created, %d reinforced, %d auto-completed",
		result.CycleID, result.Detected, len(result.Created), len(result.ReinforcedIDs), len(result.AutoCompleted))
	for _, created := range result.Created {
		p.Printf("  + %s %s", created.ID, created.Description)
	}
	for _, res := range result.AutoCompleted {
		p.Printf("  ✓ %s %s (%.2f)", res.ID, res.Reason, res.Confidence)
	}
	return nil
}
