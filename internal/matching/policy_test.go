package matching

import (
	"math"
	"testing"
)

func TestMinScoreStaircase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		refreshCount int
		expect       int
	}{
		{refreshCount: 0, expect: 50},
		{refreshCount: 1, expect: 40},
		{refreshCount: 2, expect: 30},
		{refreshCount: 3, expect: 20},
		{refreshCount: 4, expect: 10},
		{refreshCount: 5, expect: 0},
		{refreshCount: 6, expect: 0},
		{refreshCount: -3, expect: 50},
	}

	for _, tt := range tests {
		if got := MinScore(tt.refreshCount); got != tt.expect {
			t.Fatalf("MinScore(%d) = %d, want %d", tt.refreshCount, got, tt.expect)
		}
	}
}

func TestMinScoreHoldsFloor(t *testing.T) {
	t.Parallel()

	for n := 5; n < 1000; n++ {
		if got := MinScore(n); got != 0 {
			t.Fatalf("MinScore(%d) = %d, want 0", n, got)
		}
	}

	if got := MinScore(math.MaxInt); got != 0 {
		t.Fatalf("MinScore(MaxInt) = %d, want 0", got)
	}
}

func TestMinScoreNonIncreasing(t *testing.T) {
	t.Parallel()

	prev := MinScore(0)
	for n := 1; n <= 20; n++ {
		got := MinScore(n)
		if got > prev {
			t.Fatalf("MinScore(%d) = %d is above MinScore(%d) = %d", n, got, n-1, prev)
		}
		prev = got
	}
}

func TestScoreTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  int
		expect Tier
	}{
		{score: 100, expect: TierHigh},
		{score: 80, expect: TierHigh},
		{score: 79, expect: TierMedium},
		{score: 50, expect: TierMedium},
		{score: 49, expect: TierLow},
		{score: 0, expect: TierLow},
	}

	for _, tt := range tests {
		if got := ScoreTier(tt.score); got != tt.expect {
			t.Fatalf("ScoreTier(%d) = %s, want %s", tt.score, got, tt.expect)
		}
	}
}
