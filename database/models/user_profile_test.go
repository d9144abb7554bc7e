package models

import (
	"testing"
	"time"
)

func TestUserProfile_AddXP(t *testing.T) {
	tests := []struct {
		name        string
		startXP     int
		startLevel  int
		delta       int
		normalize   bool
		wantXPTotal int
		wantLevel   int
	}{
		{
			name:    "no roll-over below threshold",
			startXP: 40, startLevel: 1, delta: 30, normalize: true,
			wantXPTotal: 70, wantLevel: 1,
		},
		{
			name:    "single roll-over",
			startXP: 95, startLevel: 1, delta: 16, normalize: true,
			wantXPTotal: 11, wantLevel: 2,
		},
		{
			name:    "exact threshold rolls over to zero",
			startXP: 90, startLevel: 1, delta: 10, normalize: true,
			wantXPTotal: 0, wantLevel: 2,
		},
		{
			name:    "multi-level roll-over",
			startXP: 0, startLevel: 1, delta: 350, normalize: true,
			wantXPTotal: 50, wantLevel: 3, // 350 - 100 - 200
		},
		{
			name:    "higher level needs more xp",
			startXP: 150, startLevel: 3, delta: 100, normalize: true,
			wantXPTotal: 250, wantLevel: 3,
		},
		{
			name:    "unnormalized add leaves level alone",
			startXP: 95, startLevel: 1, delta: 50, normalize: false,
			wantXPTotal: 145, wantLevel: 1,
		},
		{
			name:    "zero level repaired before roll-over",
			startXP: 0, startLevel: 0, delta: 150, normalize: true,
			wantXPTotal: 50, wantLevel: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &UserProfile{XPTotal: tt.startXP, Level: tt.startLevel}
			p.AddXP(tt.delta, tt.normalize)
			if p.XPTotal != tt.wantXPTotal || p.Level != tt.wantLevel {
				t.Errorf("AddXP(%d, %v) = %d XP level %d, want %d XP level %d",
					tt.delta, tt.normalize, p.XPTotal, p.Level, tt.wantXPTotal, tt.wantLevel)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	got := DayOf(time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC))
	if got != "2025-03-14" {
		t.Errorf("DayOf() = %q, want 2025-03-14", got)
	}
}
