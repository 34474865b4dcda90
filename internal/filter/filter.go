// Package filter narrows a season of play-by-play data to the selected weeks.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pable/go-epa-compare/internal/model"
)

// Regular-season week bounds.
const (
	FirstWeek = 1
	LastWeek  = 18
)

// Weeks selects an inclusive range of weeks. The zero value selects every week.
type Weeks struct {
	From, To int
}

// AllWeeks returns the filter that keeps every week.
func AllWeeks() Weeks { return Weeks{} }

// SingleWeek keeps only week w.
func SingleWeek(w int) (Weeks, error) {
	return WeekRange(w, w)
}

// WeekRange keeps weeks from..to inclusive.
func WeekRange(from, to int) (Weeks, error) {
	if from < FirstWeek || from > LastWeek || to < FirstWeek || to > LastWeek {
		return Weeks{}, fmt.Errorf("week out of range %d-%d: %d-%d", FirstWeek, LastWeek, from, to)
	}
	if from > to {
		return Weeks{}, fmt.Errorf("week range %d-%d is reversed", from, to)
	}
	return Weeks{From: from, To: to}, nil
}

// ParseWeeks accepts "" (all weeks), "7" or "3-9".
func ParseWeeks(s string) (Weeks, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllWeeks(), nil
	}
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return Weeks{}, fmt.Errorf("invalid week range %q: %w", s, err)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return Weeks{}, fmt.Errorf("invalid week range %q: %w", s, err)
		}
		return WeekRange(from, to)
	}
	w, err := strconv.Atoi(s)
	if err != nil {
		return Weeks{}, fmt.Errorf("invalid week %q: %w", s, err)
	}
	return SingleWeek(w)
}

// All reports whether the filter keeps every week.
func (w Weeks) All() bool { return w.From == 0 && w.To == 0 }

// Match reports whether week passes the filter.
func (w Weeks) Match(week int) bool {
	if w.All() {
		return true
	}
	return week >= w.From && week <= w.To
}

func (w Weeks) String() string {
	switch {
	case w.All():
		return "all weeks"
	case w.From == w.To:
		return fmt.Sprintf("week %d", w.From)
	default:
		return fmt.Sprintf("weeks %d-%d", w.From, w.To)
	}
}

// Apply returns the plays of season that fall inside w, in input order.
// The result may be empty.
func Apply(plays []model.Play, season int, w Weeks) []model.Play {
	out := make([]model.Play, 0, len(plays))
	for _, p := range plays {
		if p.Season != season || !w.Match(p.Week) {
			continue
		}
		out = append(out, p)
	}
	return out
}
