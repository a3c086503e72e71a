// Package initcmd implements the first-run setup wizard behind
// `spotcheck init`.
package initcmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/spotcheck/internal/core/config"
	"github.com/colonyops/spotcheck/internal/core/doctor"
	"github.com/colonyops/spotcheck/internal/core/styles"
	"github.com/colonyops/spotcheck/internal/printer"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	DataDir    string
	Yes        bool // skip prompts, use defaults
	Force      bool // overwrite existing config
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	p := printer.Ctx(ctx)

	// Check for existing config
	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			p.Infof("Init cancelled")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = w.opts.DataDir

	if !w.opts.Yes {
		if err := w.promptUser(&cfg); err != nil {
			return err
		}
	}

	// Backup existing config if needed
	if ConfigExists(w.opts.ConfigPath) {
		backupPath, err := BackupConfig(w.opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
		if backupPath != "" {
			p.Successf("Backed up config to: %s", backupPath)
		}
	}

	if err := WriteConfig(cfg, w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	p.Successf("Created config: %s", w.opts.ConfigPath)

	// Create the data and inbox directories up front so the daemon can
	// start without manual setup.
	if err := os.MkdirAll(cfg.InboxDir(), 0o755); err != nil {
		p.Warnf("Failed to create inbox directory: %v", err)
	} else {
		p.Successf("Created inbox directory: %s", cfg.InboxDir())
	}

	// Run validation checks
	p.Printf("")
	checks := []doctor.Check{
		doctor.NewConfigCheck(w.opts.ConfigPath, w.opts.DataDir),
		doctor.NewDataDirCheck(w.opts.DataDir),
	}
	for _, result := range doctor.RunAll(ctx, checks) {
		p.Section(result.Name)
		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}
	}

	w.printNextSteps(p)

	return nil
}

func (w *Wizard) promptUser(cfg *config.Config) error {
	frequency := cfg.Scheduler.DefaultFrequency.D().String()
	inboxDir := cfg.Scheduler.InboxDir
	theme := cfg.TUI.Theme

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Default update frequency").
			Description("How often each zone is reconciled when it has no explicit interval").
			Value(&frequency).
			Validate(validFrequency),
		huh.NewInput().
			Title("Detection inbox directory").
			Description("Where the vision collaborator drops per-zone JSON files (relative paths live under the data dir)").
			Value(&inboxDir),
		huh.NewSelect[string]().
			Title("Color theme").
			Options(huh.NewOptions(styles.ThemeNames()...)...).
			Value(&theme),
	))
	if err := form.Run(); err != nil {
		return err
	}

	d, _ := time.ParseDuration(frequency)
	cfg.Scheduler.DefaultFrequency = config.Duration(d)
	if inboxDir != "" {
		cfg.Scheduler.InboxDir = inboxDir
	}
	cfg.TUI.Theme = theme

	return nil
}

func validFrequency(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("not a duration (try 30m, 1h)")
	}
	if d < time.Minute {
		return fmt.Errorf("must be at least 1m")
	}
	return nil
}

// WriteConfig marshals the config to YAML and writes it to path,
// creating parent directories as needed.
func WriteConfig(cfg config.Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func (w *Wizard) printNextSteps(p *printer.Printer) {
	p.Printf("")
	p.Section("Next Steps")
	p.Printf("  1. Add a zone:      spotcheck zones add \"Kitchen\"")
	p.Printf("  2. Feed detections: drop <zone>.json into the inbox, or pipe to 'spotcheck analyze'")
	p.Printf("  3. Start the daemon: spotcheck run")
}
