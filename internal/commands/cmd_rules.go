package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/core/ignore"
	"github.com/colonyops/spotcheck/internal/printer"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/iojson"
)

type RulesCmd struct {
	flags *Flags
	app   *spotcheck.App

	// flags
	jsonOutput    bool
	zoneRef       string
	ruleType      string
	caseSensitive bool
	matchPartial  bool
}

// NewRulesCmd creates a new rules command.
func NewRulesCmd(flags *Flags, app *spotcheck.App) *RulesCmd {
	return &RulesCmd{flags: flags, app: app}
}

// Register adds the rules command tree to the application.
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	zoneFlag := &cli.StringFlag{
		Name:        "zone",
		Aliases:     []string{"z"},
		Usage:       "zone name or id",
		Required:    true,
		Destination: &cmd.zoneRef,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "rules",
		Usage: "Manage per-zone ignore rules",
		Description: `Ignore rules suppress matching detections before they reach the
reconciliation engine. Object, area, and keyword rules match terms in
the description; pattern rules match a glob against the whole text.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List a zone's ignore rules",
				UsageText: "spotcheck rules ls --zone ZONE [--json]",
				Flags: []cli.Flag{
					zoneFlag,
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Add an ignore rule",
				UsageText: `spotcheck rules add --zone ZONE --type keyword "toys"`,
				Flags: []cli.Flag{
					zoneFlag,
					&cli.StringFlag{
						Name:        "type",
						Aliases:     []string{"t"},
						Usage:       "rule type (object, area, keyword, pattern)",
						Value:       string(ignore.TypeKeyword),
						Destination: &cmd.ruleType,
					},
					&cli.BoolFlag{
						Name:        "case-sensitive",
						Usage:       "match value case-sensitively",
						Destination: &cmd.caseSensitive,
					},
					&cli.BoolFlag{
						Name:        "partial",
						Usage:       "allow substring matches instead of whole words",
						Destination: &cmd.matchPartial,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "rm",
				Usage:     "Remove an ignore rule",
				UsageText: "spotcheck rules rm <rule-id>",
				Action:    cmd.runRm,
			},
			{
				Name:      "test",
				Usage:     "Test which of a zone's rules match a description",
				UsageText: `spotcheck rules test --zone ZONE "fold the laundry on the bed"`,
				Flags:     []cli.Flag{zoneFlag},
				Action:    cmd.runTest,
			},
		},
	})

	return app
}

func (cmd *RulesCmd) runLs(ctx context.Context, c *cli.Command) error {
	z, err := cmd.app.Zones.Resolve(ctx, cmd.zoneRef)
	if err != nil {
		return fmt.Errorf("resolve zone %q: %w", cmd.zoneRef, err)
	}

	rules, err := cmd.app.Stores.IgnoreRules.List(ctx, z.ID)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range rules {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode rule: %w", err)
			}
		}
		return nil
	}

	if len(rules) == 0 {
		fmt.Fprintf(os.Stderr, "No ignore rules for zone %q\n", z.Name)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tVALUE\tENABLED\tUSED")
	for _, r := range rules {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\n", r.ID, r.Type, r.Value, r.Enabled, r.UsageCount)
	}
	return w.Flush()
}

func (cmd *RulesCmd) runAdd(ctx context.Context, c *cli.Command) error {
	value := c.Args().First()
	if value == "" {
		return fmt.Errorf("rule value is required")
	}

	z, err := cmd.app.Zones.Resolve(ctx, cmd.zoneRef)
	if err != nil {
		return fmt.Errorf("resolve zone %q: %w", cmd.zoneRef, err)
	}

	rule := ignore.Rule{
		ZoneID:        z.ID,
		Type:          ignore.Type(cmd.ruleType),
		Value:         value,
		Enabled:       true,
		CaseSensitive: cmd.caseSensitive,
		MatchPartial:  cmd.matchPartial,
	}
	if err := cmd.app.Stores.IgnoreRules.Create(ctx, &rule); err != nil {
		return fmt.Errorf("create rule: %w", err)
	}

	printer.Ctx(ctx).Successf("Added %s rule %s to zone %q", rule.Type, rule.ID, z.Name)
	return nil
}

func (cmd *RulesCmd) runRm(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("rule id is required")
	}

	if err := cmd.app.Stores.IgnoreRules.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}

	printer.Ctx(ctx).Successf("Removed rule %s", id)
	return nil
}

func (cmd *RulesCmd) runTest(ctx context.Context, c *cli.Command) error {
	description := c.Args().First()
	if description == "" {
		return fmt.Errorf("description is required")
	}

	z, err := cmd.app.Zones.Resolve(ctx, cmd.zoneRef)
	if err != nil {
		return fmt.Errorf("resolve zone %q: %w", cmd.zoneRef, err)
	}

	rules, err := cmd.app.Stores.IgnoreRules.ListEnabled(ctx, z.ID)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	p := printer.Ctx(ctx)
	matched := 0
	for _, r := range rules {
		if r.Matches(description) {
			matched++
			p.Warnf("suppressed by %s rule %s (value %q)", r.Type, r.ID, r.Value)
		}
	}

	if matched == 0 {
		p.Successf("No rules match; the detection would be processed")
		return nil
	}
	p.Printf("%d of %d enabled rule(s) matched; the detection would be discarded", matched, len(rules))
	return nil
}
