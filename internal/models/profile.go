package models

import "time"

// Theme options for the profile settings page
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// UserProfile holds per-user quiz preferences and cumulative progress.
// Points and streak fields are mutated only when an attempt is submitted.
type UserProfile struct {
	ID                  int64
	UserID              int64
	IsQuizAdmin         bool
	Avatar              string
	Bio                 string
	PreferredDifficulty string
	PreferredCategoryID *int64
	QuestionsPerQuiz    int
	Theme               string
	EmailNotifications  bool
	CurrentStreak       int
	LongestStreak       int
	LastQuizDate        *time.Time // date only; time of day is ignored
	TotalPoints         int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ApplyStreak updates the streak counters for a quiz completed on the given
// day. Streaks are counted in calendar days: completing a second quiz on the
// same day leaves the streak unchanged, completing one the next day extends
// it, and any longer gap resets it to 1.
func (p *UserProfile) ApplyStreak(today time.Time) {
	today = truncateToDate(today)

	if p.LastQuizDate != nil {
		switch daysBetween(truncateToDate(*p.LastQuizDate), today) {
		case 0:
			// already counted today
		case 1:
			p.CurrentStreak++
		default:
			p.CurrentStreak = 1
		}
	} else {
		p.CurrentStreak = 1
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastQuizDate = &today
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts civil calendar days between two dates. Both are
// renormalized to UTC midnight first so DST transitions (23 and 25 hour
// days) cannot shift the count.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	u := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(u.Sub(f).Hours() / 24)
}
