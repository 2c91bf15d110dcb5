package services

import (
	"math"
	"testing"
)

// totalExpRequiredFor sums the per-level costs needed to sit exactly at the
// given level (level 1 is free).
func totalExpRequiredFor(level int) int64 {
	var total int64
	for l := 2; l <= level; l++ {
		total += costForLevel(l)
	}
	return total
}

func TestCostForLevel(t *testing.T) {
	t.Run("level 1 and below is free", func(t *testing.T) {
		for _, level := range []int{1, 0, -5} {
			if got := costForLevel(level); got != 0 {
				t.Errorf("costForLevel(%d) = %d, want 0", level, got)
			}
		}
	})

	t.Run("exact curve values", func(t *testing.T) {
		cases := []struct {
			level int
			want  int64
		}{
			{2, 300},  // floor(2 * 100 * 1.5^1)
			{3, 675},  // floor(3 * 100 * 1.5^2)
			{4, 1350}, // floor(4 * 100 * 1.5^3)
			{5, 2531}, // floor(5 * 100 * 1.5^4)
		}
		for _, tc := range cases {
			if got := costForLevel(tc.level); got != tc.want {
				t.Errorf("costForLevel(%d) = %d, want %d", tc.level, got, tc.want)
			}
		}
	})

	t.Run("strictly increasing", func(t *testing.T) {
		prev := costForLevel(2)
		for level := 3; level <= 60; level++ {
			cur := costForLevel(level)
			if cur <= prev {
				t.Fatalf("curve not strictly increasing: cost(%d)=%d <= cost(%d)=%d",
					level, cur, level-1, prev)
			}
			prev = cur
		}
	})
}

func TestLevelFromExp(t *testing.T) {
	t.Run("zero case", func(t *testing.T) {
		lp := LevelFromExp(0)
		if lp.Level != 1 {
			t.Errorf("level = %d, want 1", lp.Level)
		}
		if lp.CurrentLevelExp != 0 {
			t.Errorf("currentLevelExp = %d, want 0", lp.CurrentLevelExp)
		}
		if lp.NextLevelExp != 300 {
			t.Errorf("nextLevelExp = %d, want 300", lp.NextLevelExp)
		}
		if lp.Progress != 0 {
			t.Errorf("progress = %f, want 0", lp.Progress)
		}
	})

	t.Run("negative input clamps to zero", func(t *testing.T) {
		lp := LevelFromExp(-500)
		if lp.Level != 1 || lp.CurrentLevelExp != 0 {
			t.Errorf("LevelFromExp(-500) = %+v, want level 1 with 0 exp", lp)
		}
	})

	t.Run("round trip for levels 1 through 50", func(t *testing.T) {
		for level := 1; level <= 50; level++ {
			threshold := totalExpRequiredFor(level)

			if got := LevelFromExp(threshold).Level; got != level {
				t.Errorf("LevelFromExp(%d).Level = %d, want %d", threshold, got, level)
			}
			// One XP short must stay on the previous level
			if level > 1 {
				if got := LevelFromExp(threshold - 1).Level; got != level-1 {
					t.Errorf("LevelFromExp(%d).Level = %d, want %d", threshold-1, got, level-1)
				}
			}
		}
	})

	t.Run("monotonically non-decreasing", func(t *testing.T) {
		prevLevel := 0
		for exp := int64(0); exp <= 2_000_000; exp += 1337 {
			level := LevelFromExp(exp).Level
			if level < prevLevel {
				t.Fatalf("level decreased: LevelFromExp(%d).Level = %d after %d", exp, level, prevLevel)
			}
			prevLevel = level
		}
	})

	t.Run("within-level bookkeeping", func(t *testing.T) {
		// 70 XP is mid level 1: cost(2) = 300
		lp := LevelFromExp(70)
		if lp.Level != 1 {
			t.Errorf("level = %d, want 1", lp.Level)
		}
		if lp.CurrentLevelExp != 70 {
			t.Errorf("currentLevelExp = %d, want 70", lp.CurrentLevelExp)
		}
		if lp.NextLevelExp != 300 {
			t.Errorf("nextLevelExp = %d, want 300", lp.NextLevelExp)
		}
		wantProgress := float64(70) / 300 * 100
		if math.Abs(lp.Progress-wantProgress) > 1e-9 {
			t.Errorf("progress = %f, want %f", lp.Progress, wantProgress)
		}

		// 350 XP: 300 spent on level 2, 50 into it
		lp = LevelFromExp(350)
		if lp.Level != 2 {
			t.Errorf("level = %d, want 2", lp.Level)
		}
		if lp.CurrentLevelExp != 50 {
			t.Errorf("currentLevelExp = %d, want 50", lp.CurrentLevelExp)
		}
		if lp.NextLevelExp != 675 {
			t.Errorf("nextLevelExp = %d, want 675", lp.NextLevelExp)
		}
	})
}

func TestExpFromMinutes(t *testing.T) {
	cases := []struct {
		minutes float64
		want    int64
	}{
		{0, 0},
		{1, 10},
		{2, 20},
		{2.9, 20}, // fractional minutes truncate
		{59.999, 590},
		{60, 600},
		{-3, 0}, // never negative
	}
	for _, tc := range cases {
		if got := ExpFromMinutes(tc.minutes); got != tc.want {
			t.Errorf("ExpFromMinutes(%v) = %d, want %d", tc.minutes, got, tc.want)
		}
	}

	t.Run("linear for whole minutes", func(t *testing.T) {
		for m := int64(0); m <= 500; m++ {
			if got := ExpFromMinutes(float64(m)); got != 10*m {
				t.Fatalf("ExpFromMinutes(%d) = %d, want %d", m, got, 10*m)
			}
		}
	})
}
