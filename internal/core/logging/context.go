package logging

import "context"

type contextKey string

const (
	zoneIDKey  contextKey = "zone_id"
	cycleIDKey contextKey = "cycle_id"
)

// WithZoneID adds a zone ID to the context.
func WithZoneID(ctx context.Context, zoneID string) context.Context {
	return context.WithValue(ctx, zoneIDKey, zoneID)
}

// WithCycleID adds a reconciliation cycle ID to the context.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDKey, cycleID)
}

// GetZoneID retrieves the zone ID from the context.
// Returns empty string if not present.
func GetZoneID(ctx context.Context) string {
	if id, ok := ctx.Value(zoneIDKey).(string); ok {
		return id
	}
	return ""
}

// GetCycleID retrieves the cycle ID from the context.
// Returns empty string if not present.
func GetCycleID(ctx context.Context) string {
	if id, ok := ctx.Value(cycleIDKey).(string); ok {
		return id
	}
	return ""
}
