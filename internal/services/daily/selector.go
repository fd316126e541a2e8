// Package daily maps calendar days in one canonical zone to secret words.
package daily

import (
	"time"
	_ "time/tzdata"
)

// DefaultZone is the zone whose midnight starts a new daily word
const DefaultZone = "America/Denver"

// DateLayout is the layout of date keys
const DateLayout = "2006-01-02"

// Epoch is the day whose word is the first in the list
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// WordSource supplies the ordered word list
type WordSource interface {
	Words() []string
}

// Selector picks the word for a day. It is pure apart from reading the
// current word list.
type Selector struct {
	source WordSource
	loc    *time.Location
}

// New creates a Selector using loc as the canonical zone
func New(source WordSource, loc *time.Location) *Selector {
	if loc == nil {
		loc = time.UTC
	}
	return &Selector{source: source, loc: loc}
}

// LoadLocation resolves a zone name, defaulting to DefaultZone
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	return time.LoadLocation(name)
}

// Location returns the canonical zone
func (s *Selector) Location() *time.Location {
	return s.loc
}

// DateKey returns the YYYY-MM-DD day containing t in the canonical zone
func (s *Selector) DateKey(t time.Time) string {
	return t.In(s.loc).Format(DateLayout)
}

// DayIndex returns the number of days from Epoch to the day containing t.
// It is negative before the epoch.
func (s *Selector) DayIndex(t time.Time) int {
	y, m, d := t.In(s.loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(Epoch) / (24 * time.Hour))
}

// WordForDate returns the word for the day containing t, or "" if the list is empty
func (s *Selector) WordForDate(t time.Time) string {
	words := s.source.Words()
	if len(words) == 0 {
		return ""
	}
	return words[mod(s.DayIndex(t), len(words))]
}

// NextBoundary returns the next canonical midnight after t
func (s *Selector) NextBoundary(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

// TimeUntilNext returns how long until the word changes
func (s *Selector) TimeUntilNext(t time.Time) time.Duration {
	return s.NextBoundary(t).Sub(t)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
