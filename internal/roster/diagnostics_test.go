package roster

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDiagnostics_Info(t *testing.T) {
	window := 120 * time.Second
	tests := []struct {
		name    string
		status  Status
		ttl     time.Duration
		wantTTL string
		wantAge string
	}{
		{"fresh miss", StatusMiss, window, "120", "0"},
		{"hit after a moment", StatusHit, window - time.Millisecond, "119", "1"},
		{"hit in the same millisecond as the set", StatusHit, window, "119", "1"},
		{"hit mid window", StatusHit, 90 * time.Second, "90", "30"},
		{"expired at read time", StatusHit, 0, "0", "null"},
		{"sub-second remaining", StatusHit, 400 * time.Millisecond, "0", "null"},
		{"remaining life unknown", StatusHit, -1, "null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diagnostics{Status: tt.status, Source: SourceCache, TTLRemaining: tt.ttl, Window: window}
			b, err := json.Marshal(d)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got map[string]json.RawMessage
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if string(got["ttl_seconds"]) != tt.wantTTL {
				t.Errorf("ttl_seconds = %s, want %s", got["ttl_seconds"], tt.wantTTL)
			}
			if string(got["cache_age_seconds"]) != tt.wantAge {
				t.Errorf("cache_age_seconds = %s, want %s", got["cache_age_seconds"], tt.wantAge)
			}
		})
	}
}

func TestDiagnostics_ResponseTimeRounded(t *testing.T) {
	d := Diagnostics{Latency: 1234567 * time.Nanosecond}
	if got := d.ResponseTimeMS(); got != 1.23 {
		t.Errorf("expected 1.23ms, got %v", got)
	}
}
