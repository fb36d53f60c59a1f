package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestApplyStreak(t *testing.T) {
	tests := []struct {
		name          string
		current       int
		longest       int
		lastQuizDate  *time.Time
		today         time.Time
		wantCurrent   int
		wantLongest   int
	}{
		{
			name:        "first ever quiz starts streak at one",
			current:     0,
			longest:     0,
			today:       date(2025, 3, 10),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:         "same day does not change streak",
			current:      3,
			longest:      5,
			lastQuizDate: datePtr(2025, 3, 10),
			today:        date(2025, 3, 10),
			wantCurrent:  3,
			wantLongest:  5,
		},
		{
			name:         "consecutive day extends streak",
			current:      3,
			longest:      5,
			lastQuizDate: datePtr(2025, 3, 9),
			today:        date(2025, 3, 10),
			wantCurrent:  4,
			wantLongest:  5,
		},
		{
			name:         "extending past longest raises longest",
			current:      5,
			longest:      5,
			lastQuizDate: datePtr(2025, 3, 9),
			today:        date(2025, 3, 10),
			wantCurrent:  6,
			wantLongest:  6,
		},
		{
			name:         "gap resets streak to one",
			current:      7,
			longest:      9,
			lastQuizDate: datePtr(2025, 3, 7),
			today:        date(2025, 3, 10),
			wantCurrent:  1,
			wantLongest:  9,
		},
		{
			name:         "calendar day boundary counts, not 24 hours",
			current:      2,
			longest:      2,
			lastQuizDate: datePtr(2025, 3, 9),
			// 23:59 the next day is still one calendar day later
			today:       time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:         "month boundary is consecutive",
			current:      1,
			longest:      1,
			lastQuizDate: datePtr(2025, 2, 28),
			today:        date(2025, 3, 1),
			wantCurrent:  2,
			wantLongest:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &UserProfile{
				CurrentStreak: tt.current,
				LongestStreak: tt.longest,
				LastQuizDate:  tt.lastQuizDate,
			}
			p.ApplyStreak(tt.today)

			if p.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", p.CurrentStreak, tt.wantCurrent)
			}
			if p.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, want %d", p.LongestStreak, tt.wantLongest)
			}
			if p.LastQuizDate == nil {
				t.Fatal("LastQuizDate not set")
			}
			wantDate := time.Date(tt.today.Year(), tt.today.Month(), tt.today.Day(), 0, 0, 0, 0, tt.today.Location())
			if !p.LastQuizDate.Equal(wantDate) {
				t.Errorf("LastQuizDate = %v, want %v", p.LastQuizDate, wantDate)
			}
		})
	}
}

func TestApplyStreakAcrossDSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// March 8 2026 is the 23-hour spring-forward day in New York; the next
	// civil day must still extend the streak.
	last := time.Date(2026, 3, 8, 9, 0, 0, 0, ny)
	p := &UserProfile{
		CurrentStreak: 3,
		LongestStreak: 5,
		LastQuizDate:  &last,
	}
	p.ApplyStreak(time.Date(2026, 3, 9, 9, 0, 0, 0, ny))
	if p.CurrentStreak != 4 {
		t.Errorf("CurrentStreak = %d, want 4", p.CurrentStreak)
	}

	// Fall-back: November 1 2026 is a 25-hour day, still one calendar day
	// after October 31.
	last = time.Date(2026, 10, 31, 9, 0, 0, 0, ny)
	p = &UserProfile{
		CurrentStreak: 1,
		LongestStreak: 1,
		LastQuizDate:  &last,
	}
	p.ApplyStreak(time.Date(2026, 11, 1, 9, 0, 0, 0, ny))
	if p.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", p.CurrentStreak)
	}
}
