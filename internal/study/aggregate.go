package study

import (
	"fmt"
	"sort"
	"time"
)

// Aggregation over raw timer-session rows. All functions are pure and operate
// on rows already filtered to a single owner. Missing days are represented as
// absence, never as a masked zero.

// streakWindow bounds how far back a streak walk scans. A run longer than the
// window reports the window size.
const streakWindow = 365

const dateLayout = "2006-01-02"

// ValidDate reports whether s is a YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// DailyTotal sums the durations of a day's sessions.
func DailyTotal(sessions []TimerSession) int {
	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// FilterByDateRange keeps sessions with start <= date <= end. Lexicographic
// comparison is exact for fixed-width ISO dates.
func FilterByDateRange(sessions []TimerSession, start, end string) []TimerSession {
	var out []TimerSession
	for _, s := range sessions {
		if s.Date >= start && s.Date <= end {
			out = append(out, s)
		}
	}
	return out
}

// GroupBySubject sums durations per subject for time-distribution charts.
func GroupBySubject(sessions []TimerSession) map[string]int {
	out := make(map[string]int)
	for _, s := range sessions {
		out[s.Subject] += s.Duration
	}
	return out
}

// MonthlyCalendar returns one entry per distinct day of the month that has at
// least one session, sorted by date. Same-day sessions are summed.
func MonthlyCalendar(sessions []TimerSession, year, month int) []DayTotal {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	byDate := make(map[string]int)
	for _, s := range sessions {
		if len(s.Date) == len(dateLayout) && s.Date[:len(prefix)] == prefix {
			byDate[s.Date] += s.Duration
		}
	}
	out := make([]DayTotal, 0, len(byDate))
	for date, total := range byDate {
		out = append(out, DayTotal{Date: date, TotalSeconds: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Streak counts consecutive days with at least one session, walking backward
// from today (YYYY-MM-DD). A today without sessions is a streak of zero. The
// walk stops at the first gap and scans at most a year back.
func Streak(sessions []TimerSession, today string) int {
	day, err := time.Parse(dateLayout, today)
	if err != nil {
		return 0
	}
	active := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		active[s.Date] = struct{}{}
	}

	streak := 0
	for i := 0; i < streakWindow; i++ {
		date := day.AddDate(0, 0, -i).Format(dateLayout)
		if _, ok := active[date]; !ok {
			break
		}
		streak++
	}
	return streak
}
