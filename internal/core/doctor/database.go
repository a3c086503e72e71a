package doctor

import (
	"context"
	"fmt"
)

// DatabaseCheck verifies the SQLite database opens and its migrations
// are current. The probe is injected so this package stays independent
// of the data layer.
type DatabaseCheck struct {
	probe func(ctx context.Context) (pending []int, err error)
}

// NewDatabaseCheck creates a new database check from a probe that opens
// the database and reports unapplied migration versions.
func NewDatabaseCheck(probe func(ctx context.Context) ([]int, error)) *DatabaseCheck {
	return &DatabaseCheck{probe: probe}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	pending, err := c.probe(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "open",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "open",
		Status: StatusPass,
	})

	if len(pending) > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:   "migrations",
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("%d pending", len(pending)),
			Fixable: true,
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "migrations",
			Status: StatusPass,
			Detail: "current",
		})
	}

	return result
}
