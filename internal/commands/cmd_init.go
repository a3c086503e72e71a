package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	initcmd "github.com/colonyops/spotcheck/internal/commands/init"
)

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize spotcheck configuration with an interactive wizard",
		UsageText: "spotcheck init [options]",
		Description: `Sets up spotcheck for first-time use with an interactive wizard.

The wizard will:
  - Generate ~/.config/spotcheck/config.yaml with sensible defaults
  - Create the data directory and detection inbox

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		DataDir:    cmd.flags.DataDir,
		Yes:        cmd.yes,
		Force:      cmd.force,
	})
	return wizard.Run(ctx)
}
