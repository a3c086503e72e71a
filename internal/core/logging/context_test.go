package logging

import (
	"context"
	"testing"
)

func TestWithZoneID(t *testing.T) {
	ctx := context.Background()
	zoneID := "kitchen"

	ctx = WithZoneID(ctx, zoneID)
	got := GetZoneID(ctx)

	if got != zoneID {
		t.Errorf("GetZoneID() = %q, want %q", got, zoneID)
	}
}

func TestWithCycleID(t *testing.T) {
	ctx := context.Background()
	cycleID := "cyc-456"

	ctx = WithCycleID(ctx, cycleID)
	got := GetCycleID(ctx)

	if got != cycleID {
		t.Errorf("GetCycleID() = %q, want %q", got, cycleID)
	}
}

func TestGetZoneID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetZoneID(ctx)

	if got != "" {
		t.Errorf("GetZoneID() = %q, want empty string", got)
	}
}

func TestGetCycleID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetCycleID(ctx)

	if got != "" {
		t.Errorf("GetCycleID() = %q, want empty string", got)
	}
}

func TestBothIDs(t *testing.T) {
	ctx := context.Background()
	zoneID := "zone-1"
	cycleID := "cycle-1"

	ctx = WithZoneID(ctx, zoneID)
	ctx = WithCycleID(ctx, cycleID)

	if got := GetZoneID(ctx); got != zoneID {
		t.Errorf("GetZoneID() = %q, want %q", got, zoneID)
	}

	if got := GetCycleID(ctx); got != cycleID {
		t.Errorf("GetCycleID() = %q, want %q", got, cycleID)
	}
}
