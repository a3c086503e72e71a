package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/spotcheck"
)

// ZoneNameCompleter returns a ShellCompleteFunc that suggests zone names
// as positional completions. Set this as the ShellComplete field on any
// cli.Command that accepts a zone reference as an argument.
//
// When the user's last typed argument starts with "-", it falls back to
// the default flag completion behavior.
func ZoneNameCompleter(app *spotcheck.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		zones, err := app.Zones.List(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, z := range zones {
			_, _ = fmt.Fprintln(w, z.Name)
		}
	}
}
