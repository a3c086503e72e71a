package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/colonyops/spotcheck/internal/core/config"
)

// ConfigCheck verifies the config file parses and validates.
type ConfigCheck struct {
	path    string
	dataDir string
}

// NewConfigCheck creates a new config check.
func NewConfigCheck(path, dataDir string) *ConfigCheck {
	return &ConfigCheck{path: path, dataDir: dataDir}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%s not found, using defaults (run `spotcheck init`)", c.path),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusPass,
			Detail: c.path,
		})
	}

	cfg, err := config.Load(c.path, c.dataDir)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "load",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "load",
		Status: StatusPass,
		Detail: fmt.Sprintf("theme %s, inbox %s", cfg.TUI.Theme, cfg.InboxDir()),
	})

	return result
}
