// Package hours evaluates store opening schedules against a point in time.
package hours

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Range is a same-day opening window in minutes from midnight, inclusive
// at both ends. Start must not exceed End: windows never cross midnight.
// A store that closes past midnight must be represented as two same-day
// ranges by the caller (e.g. Fri 20:00-23:59 plus Sat 00:00-02:00).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the range respects the same-day invariant.
func (r Range) Valid() bool {
	return r.Start >= 0 && r.End <= 24*60 && r.Start <= r.End
}

// Weekly maps a weekday (time.Sunday through time.Saturday) to its
// opening windows. A missing or empty day means closed all day.
type Weekly map[time.Weekday][]Range

// EvalWeekly reports whether the schedule is open at now. The weekday is
// resolved from now directly (Sun=0..Sat=6), independent of locale.
func EvalWeekly(w Weekly, now time.Time) bool {
	minute := now.Hour()*60 + now.Minute()
	for _, r := range w[now.Weekday()] {
		if minute >= r.Start && minute <= r.End {
			return true
		}
	}
	return false
}

// Status is the result of evaluating a free-text schedule.
type Status struct {
	Open   bool   `json:"open"`
	Label  string `json:"label"`
	Opens  string `json:"opens,omitempty"`
	Closes string `json:"closes,omitempty"`
}

// Labels shown to the user. LabelNoData marks a store with no schedule at
// all — a known-closed answer, distinct from an unparseable schedule,
// for which EvalText returns nil.
const (
	LabelOpen    = "Abierto"
	LabelClosed  = "Cerrado"
	LabelNoData  = "Horario no disponible"
	label24Hours = "Abierto 24 horas"
)

var windowPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)

// EvalText evaluates an OSM opening_hours-style string at now.
//
// "24/7" is special-cased as always open. Otherwise only the first
// HH:MM-HH:MM window found in the string is honoured, even when the text
// encodes several day-qualified ranges; the remainder is ignored. A nil
// or empty schedule yields a closed Status with LabelNoData; a non-empty
// string with no recognisable window yields nil (unparseable).
func EvalText(raw *string, now time.Time) *Status {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return &Status{Open: false, Label: LabelNoData}
	}

	s := strings.TrimSpace(*raw)
	if s == "24/7" {
		return &Status{Open: true, Label: label24Hours, Opens: "00:00", Closes: "23:59"}
	}

	m := windowPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	opens := atoi(m[1])*60 + atoi(m[2])
	closes := atoi(m[3])*60 + atoi(m[4])

	minute := now.Hour()*60 + now.Minute()
	open := minute >= opens && minute <= closes

	label := LabelClosed
	if open {
		label = LabelOpen
	}

	return &Status{
		Open:   open,
		Label:  label,
		Opens:  clock(opens),
		Closes: clock(closes),
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s) // matched \d+, cannot fail
	return n
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
