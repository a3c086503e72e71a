package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/zone"
)

// staleFactor is how many missed update intervals make a zone stale.
const staleFactor = 3

// ZonesCheck verifies zone configuration sanity and flags zones whose
// reconciliation has gone stale.
type ZonesCheck struct {
	zones    zone.Store
	analyses analysis.Store
	now      func() time.Time
}

// NewZonesCheck creates a new zones check.
func NewZonesCheck(zones zone.Store, analyses analysis.Store) *ZonesCheck {
	return &ZonesCheck{zones: zones, analyses: analyses, now: time.Now}
}

func (c *ZonesCheck) Name() string {
	return "Zones"
}

func (c *ZonesCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	zones, err := c.zones.List(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "zones",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if len(zones) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "zones",
			Status: StatusWarn,
			Detail: "no zones configured (run `spotcheck zones add`)",
		})
		return result
	}

	now := c.now()
	for _, z := range zones {
		result.Items = append(result.Items, c.checkZone(ctx, z, now))
	}

	return result
}

func (c *ZonesCheck) checkZone(ctx context.Context, z zone.Zone, now time.Time) CheckItem {
	item := CheckItem{Label: z.Name}

	if z.UpdateFrequency <= 0 {
		item.Status = StatusFail
		item.Detail = "update frequency is zero"
		return item
	}

	if !z.Enabled {
		item.Status = StatusPass
		item.Detail = "disabled"
		return item
	}

	latest, err := c.analyses.Latest(ctx, z.ID)
	switch {
	case errors.Is(err, analysis.ErrNotFound):
		item.Status = StatusWarn
		item.Detail = "never analyzed"
	case err != nil:
		item.Status = StatusFail
		item.Detail = err.Error()
	case now.Sub(latest.CreatedAt) > staleFactor*z.UpdateFrequency:
		item.Status = StatusWarn
		item.Detail = fmt.Sprintf("stale: last analysis %s ago (interval %s)",
			now.Sub(latest.CreatedAt).Round(time.Minute), z.UpdateFrequency)
	default:
		item.Status = StatusPass
		item.Detail = fmt.Sprintf("last analysis %s ago", now.Sub(latest.CreatedAt).Round(time.Second))
	}

	return item
}
