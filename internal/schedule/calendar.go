package schedule

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the date format used on the command line, in cache file
// names and by the stats provider.
const DateLayout = "2006-01-02"

// Range names a reporting window ending at an anchor date.
type Range string

const (
	RangeDay      Range = "1d"
	RangeWeek     Range = "1w"
	RangeTwoWeeks Range = "2w"
	RangeMonth    Range = "1m"
	RangeAll      Range = "all"
)

var rangeLengths = map[Range]int{
	RangeDay:      1,
	RangeWeek:     7,
	RangeTwoWeeks: 14,
	RangeMonth:    30,
}

// ParseRange validates a range name.
func ParseRange(s string) (Range, error) {
	r := Range(s)
	if _, ok := rangeLengths[r]; ok || r == RangeAll {
		return r, nil
	}
	return "", fmt.Errorf("unknown range %q (use 1d, 1w, 2w, 1m or all)", s)
}

// Calendar holds the season facts that date resolution depends on.
type Calendar struct {
	seasonStart time.Time
	noGameDates map[string]bool
	weekStarts  map[string]time.Time
}

// Default season facts for 2019: the Tokyo opener, the gap before the
// domestic opening day and the All-Star break. Matchup weeks containing the
// dates on the left start on the dates on the right.
var (
	DefaultSeasonStart = "2019-03-20"
	DefaultNoGameDates = []string{
		"2019-03-22", "2019-03-23", "2019-03-24", "2019-03-25", "2019-03-26", "2019-03-27",
		"2019-07-08", "2019-07-09", "2019-07-10",
	}
	DefaultWeekStartOverrides = map[string]string{
		"2019-03-25": "2019-03-20",
		"2019-07-15": "2019-07-08",
	}
)

// NewCalendar builds a calendar. Override keys may be any date inside the
// week to shift; values are the shifted start date.
func NewCalendar(seasonStart string, noGameDates []string, weekStartOverrides map[string]string) (*Calendar, error) {
	start, err := ParseDate(seasonStart)
	if err != nil {
		return nil, fmt.Errorf("season start: %w", err)
	}

	c := &Calendar{
		seasonStart: start,
		noGameDates: make(map[string]bool, len(noGameDates)),
		weekStarts:  make(map[string]time.Time, len(weekStartOverrides)),
	}

	for _, d := range noGameDates {
		t, err := ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("no-game date: %w", err)
		}
		c.noGameDates[FormatDate(t)] = true
	}

	for in, startStr := range weekStartOverrides {
		inWeek, err := ParseDate(in)
		if err != nil {
			return nil, fmt.Errorf("week override key: %w", err)
		}
		shifted, err := ParseDate(startStr)
		if err != nil {
			return nil, fmt.Errorf("week override value: %w", err)
		}
		c.weekStarts[FormatDate(monday(inWeek))] = shifted
	}

	return c, nil
}

// DefaultCalendar returns the built-in 2019 calendar.
func DefaultCalendar() *Calendar {
	c, err := NewCalendar(DefaultSeasonStart, DefaultNoGameDates, DefaultWeekStartOverrides)
	if err != nil {
		panic(err)
	}
	return c
}

// SeasonStart returns the first date of the season.
func (c *Calendar) SeasonStart() time.Time {
	return c.seasonStart
}

// IsNoGameDate reports whether no games are scheduled on date.
func (c *Calendar) IsNoGameDate(date time.Time) bool {
	return c.noGameDates[FormatDate(date)]
}

// DateStrs resolves the dates whose stats make up a report.
//
// 1d is the anchor alone. 1w, 2w and 1m collect 7, 14 or 30 game dates
// walking backward from the anchor; no-game dates are skipped and do not
// count. all is every game date from the season start through the anchor,
// ascending.
func (c *Calendar) DateStrs(anchor string, r Range) ([]string, error) {
	day, err := ParseDate(anchor)
	if err != nil {
		return nil, err
	}

	if r == RangeAll {
		var dates []string
		for d := c.seasonStart; !d.After(day); d = d.AddDate(0, 0, 1) {
			if !c.IsNoGameDate(d) {
				dates = append(dates, FormatDate(d))
			}
		}
		return dates, nil
	}

	n, ok := rangeLengths[r]
	if !ok {
		return nil, fmt.Errorf("unknown range %q", r)
	}
	if n == 1 {
		return []string{FormatDate(day)}, nil
	}

	dates := make([]string, 0, n)
	for d := day; len(dates) < n; d = d.AddDate(0, 0, -1) {
		if !c.IsNoGameDate(d) {
			dates = append(dates, FormatDate(d))
		}
	}
	return dates, nil
}

// WeeklyDateStrs resolves the matchup week containing date, from its start
// through date itself. The start is Monday unless overridden and never
// precedes the season start. A date before the season yields no dates.
func (c *Calendar) WeeklyDateStrs(date string) ([]string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if day.Before(c.seasonStart) {
		return []string{}, nil
	}

	start := c.WeekStart(day)
	if start.Before(c.seasonStart) {
		start = c.seasonStart
	}

	dates := []string{}
	for d := start; !d.After(day); d = d.AddDate(0, 0, 1) {
		if !c.IsNoGameDate(d) {
			dates = append(dates, FormatDate(d))
		}
	}
	return dates, nil
}

// WeekStart returns the first date of the matchup week containing day.
func (c *Calendar) WeekStart(day time.Time) time.Time {
	m := monday(day)
	if shifted, ok := c.weekStarts[FormatDate(m)]; ok {
		return shifted
	}
	return m
}

// NoGameDates returns the configured no-game dates, sorted.
func (c *Calendar) NoGameDates() []string {
	dates := make([]string, 0, len(c.noGameDates))
	for d := range c.noGameDates {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func monday(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// EnumerateDates lists every date from start through end, swapping the
// bounds when they are reversed.
func EnumerateDates(start, end time.Time) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}

	var dates []time.Time
	current := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	final := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for !current.After(final) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}
