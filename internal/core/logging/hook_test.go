package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "both zone_id and cycle_id",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithZoneID(ctx, "kitchen")
				ctx = WithCycleID(ctx, "cyc-456")
				return ctx
			},
			wantKeys: []string{"zone_id", "cycle_id"},
		},
		{
			name: "only zone_id",
			setupCtx: func() context.Context {
				return WithZoneID(context.Background(), "kitchen")
			},
			wantKeys:  []string{"zone_id"},
			wantEmpty: []string{"cycle_id"},
		},
		{
			name: "only cycle_id",
			setupCtx: func() context.Context {
				return WithCycleID(context.Background(), "cyc-456")
			},
			wantKeys:  []string{"cycle_id"},
			wantEmpty: []string{"zone_id"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"zone_id", "cycle_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
