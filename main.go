package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/spotcheck/internal/commands"
	"github.com/colonyops/spotcheck/internal/core/config"
	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/styles"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/internal/data/stores"
	"github.com/colonyops/spotcheck/internal/spotcheck"
	"github.com/colonyops/spotcheck/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser    func()
		spotcheckApp = &spotcheck.App{}
		database     *db.DB
		busCancel    context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "spotcheck",
		Usage:     "Track cleaning tasks detected by a vision model",
		UsageText: "spotcheck [global options] command [command options]",
		Description: `Spotcheck reconciles vision-detected cleaning tasks per zone: new
detections create tasks, repeated sightings reinforce them, and tasks
that stop appearing are auto-completed. Decision thresholds adapt per
zone from how often you revert its auto-completions.

Run 'spotcheck init' to set up, 'spotcheck run' to start the daemon,
and 'spotcheck watch' for the live view.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SPOTCHECK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/spotcheck.log)",
				Sources:     cli.EnvVars("SPOTCHECK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SPOTCHECK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SPOTCHECK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/spotcheck.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "spotcheck.log")
			}

			if err := os.MkdirAll(flags.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			// Open database connection and apply migrations
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			st := spotcheck.Stores{
				Tasks:         stores.NewTaskStore(database),
				Zones:         stores.NewZoneStore(database),
				Thresholds:    stores.NewThresholdStore(database),
				IgnoreRules:   stores.NewIgnoreStore(database),
				Outcomes:      stores.NewOutcomeStore(database),
				Analyses:      stores.NewAnalysisStore(database),
				Notifications: stores.NewNotifyStore(database),
			}

			// Event bus outlives individual command contexts; stopped in After.
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel

			bus := eventbus.New(cfg.Engine.EventBufferSize)
			go bus.Start(busCtx)
			eventbus.NewNotificationRouter(bus, st.Notifications, log.Logger).Register()
			eventbus.RegisterDebugLogger(bus, log.Logger)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*spotcheckApp = *spotcheck.NewApp(st, cfg, bus, database, log.Logger)
			flags.App = spotcheckApp

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Stop event bus workers
			if busCancel != nil {
				busCancel()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewInitCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewZonesCmd(flags, spotcheckApp).Register(app)
	app = commands.NewTasksCmd(flags, spotcheckApp).Register(app)
	app = commands.NewRulesCmd(flags, spotcheckApp).Register(app)
	app = commands.NewThresholdsCmd(flags, spotcheckApp).Register(app)
	app = commands.NewAnalyzeCmd(flags, spotcheckApp).Register(app)
	app = commands.NewRunCmd(flags, spotcheckApp).Register(app)
	app = commands.NewNotificationsCmd(flags, spotcheckApp).Register(app)
	app = commands.NewDoctorCmd(flags, spotcheckApp).Register(app)
	app = commands.NewDocsCmd(flags).Register(app)
	app = commands.NewWatchCmd(flags, spotcheckApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
