package utils

import (
	"testing"
	"time"
)

func TestTickClock(t *testing.T) {
	clock := NewTickClock(50 * time.Millisecond)

	if clock.Now() != 0 {
		t.Fatalf("expected fresh clock at tick 0, got %d", clock.Now())
	}

	if got := clock.Advance(); got != 1 {
		t.Fatalf("expected tick 1 after advance, got %d", got)
	}
	clock.Advance()
	clock.Advance()

	if clock.Now() != 3 {
		t.Fatalf("expected tick 3, got %d", clock.Now())
	}

	if got := clock.Elapsed(1, 3); got != 100*time.Millisecond {
		t.Fatalf("expected 100ms elapsed, got %v", got)
	}
	if got := clock.Elapsed(3, 1); got != 0 {
		t.Fatalf("expected 0 elapsed for reversed range, got %v", got)
	}
}

func TestDurationToTicks(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		tickLen time.Duration
		want    uint64
	}{
		{"exact multiple", 100 * time.Millisecond, 50 * time.Millisecond, 2},
		{"rounds up", 101 * time.Millisecond, 50 * time.Millisecond, 3},
		{"sub-tick rounds up", 10 * time.Millisecond, 50 * time.Millisecond, 1},
		{"zero duration", 0, 50 * time.Millisecond, 0},
		{"negative duration", -time.Second, 50 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationToTicks(tt.d, tt.tickLen); got != tt.want {
				t.Errorf("DurationToTicks(%v, %v) = %d, want %d", tt.d, tt.tickLen, got, tt.want)
			}
		})
	}
}

func TestSecondsToDuration(t *testing.T) {
	if got := SecondsToDuration(0.5); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", got)
	}
}
