package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/spotcheck/internal/core/styles"
)

type DocsCmd struct {
	flags *Flags
	plain bool
}

func NewDocsCmd(flags *Flags) *DocsCmd {
	return &DocsCmd{flags: flags}
}

func (cmd *DocsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "docs",
		Usage:       "Show the reconciliation engine guide",
		UsageText:   "spotcheck docs [--plain]",
		Description: "Renders a guide to the detection format, reconciliation behavior, and task lifecycle.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print raw markdown without terminal rendering",
				Destination: &cmd.plain,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DocsCmd) run(_ context.Context, c *cli.Command) error {
	w := c.Root().Writer

	if cmd.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := fmt.Fprint(w, engineGuide, "\n")
		return err
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || width > 100 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(engineGuide)
	if err != nil {
		return fmt.Errorf("render guide: %w", err)
	}

	_, err = fmt.Fprint(w, out)
	return err
}

const engineGuide = `# Spotcheck Engine Guide

Spotcheck turns noisy vision-model output into a stable task list. The
vision collaborator describes what it sees; spotcheck decides which
descriptions are new tasks, which are re-sightings of tasks it already
tracks, and which open tasks have quietly been dealt with.

## Feeding detections

Each zone gets one JSON batch per cycle, either dropped into the inbox
directory as ` + "`<zone-name>.json`" + ` (consumed by ` + "`spotcheck run`" + `) or piped
to ` + "`spotcheck analyze --zone ZONE`" + `:

` + "```json" + `
{
  "detections": [
    {"description": "wipe down the kitchen counter", "confidence": 0.92},
    {"description": "put away the dishes", "confidence": 0.71}
  ],
  "cleanliness_score": 0.65
}
` + "```" + `

Confidence must lie in [0, 1]. A batch with any invalid detection is
rejected whole; nothing from it is applied.

## What one cycle does

1. **Ignore rules** run first. Suppressed detections never reach the
   matcher, and each suppression bumps the rule's usage count.
2. **Matching** pairs detections with open tasks by text similarity
   (word-sequence overlap blended with keyword overlap). Only pairs at
   or above the zone's similarity threshold match; each side matches at
   most once, best pairs first.
3. **Matched detections reinforce**: the task's detection count rises
   and its confidence moves toward the new sighting (70% old, 30% new).
4. **Unmatched detections create tasks.** Priority and a duration
   estimate come from description keywords; creation confidence is
   scaled by how specific the description is.
5. **Open tasks absent from the batch** are scored by completion rules.
   A task seen often but missing now, or stale and never corroborated,
   auto-completes when the rule confidence clears the zone's resolution
   floor.

All of a cycle's mutations commit in one transaction.

## Task lifecycle

A task is ` + "`pending`" + ` until exactly one of: ` + "`completed`" + ` (you confirm it),
` + "`auto_completed`" + ` (the engine resolves it), ` + "`ignored`" + `, or ` + "`cancelled`" + `.
Every state but pending is terminal, with one exception:
` + "`spotcheck tasks reopen`" + ` returns an auto-completed task to pending and
records that the engine got it wrong.

## Adaptive thresholds

Every auto-completion is an outcome; a reopen marks it reverted. Over a
trailing 30-day window the adaptor computes accuracy per zone: above
90% it loosens the thresholds by 0.1, below 70% it tightens them by
0.1, always clamped to [0.30, 0.95]. The daemon sweeps daily;
` + "`spotcheck thresholds adjust`" + ` forces it.

## Quick reference

| Command | Purpose |
|---------|---------|
| ` + "`spotcheck zones add \"Kitchen\"`" + ` | start tracking a zone |
| ` + "`spotcheck analyze -z kitchen -f batch.json`" + ` | one manual cycle |
| ` + "`spotcheck run`" + ` | scheduler daemon |
| ` + "`spotcheck tasks ls -z kitchen`" + ` | inspect tasks |
| ` + "`spotcheck rules test -z kitchen \"...\"`" + ` | dry-run ignore rules |
| ` + "`spotcheck watch`" + ` | live TUI |
`
