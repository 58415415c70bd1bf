package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MarketHours is a weekly trading window evaluated in a fixed UTC offset.
type MarketHours struct {
	Days     [7]bool // indexed by time.Weekday
	Open     time.Duration
	Close    time.Duration
	Location *time.Location
}

// IsOpen reports whether t falls on a trading day inside [Open, Close).
func (h MarketHours) IsOpen(t time.Time) bool {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	if !h.Days[local.Weekday()] {
		return false
	}
	hour, min, sec := local.Clock()
	tod := time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second
	return tod >= h.Open && tod < h.Close
}

var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday, "MON": time.Monday, "TUE": time.Tuesday, "WED": time.Wednesday,
	"THU": time.Thursday, "FRI": time.Friday, "SAT": time.Saturday,
}

// ParseMarketHours builds a window from "Mon,Tue,...", "HH:MM", "HH:MM" and "+HH:MM".
func ParseMarketHours(days, open, close, offset string) (MarketHours, error) {
	var h MarketHours
	for _, d := range strings.Split(days, ",") {
		d = strings.ToUpper(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if len(d) > 3 {
			d = d[:3]
		}
		wd, ok := weekdays[d]
		if !ok {
			return MarketHours{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidHours, d)
		}
		h.Days[wd] = true
	}
	var err error
	if h.Open, err = parseClock(open); err != nil {
		return MarketHours{}, err
	}
	if h.Close, err = parseClock(close); err != nil {
		return MarketHours{}, err
	}
	if h.Close <= h.Open {
		return MarketHours{}, fmt.Errorf("%w: close %s is not after open %s", ErrInvalidHours, close, open)
	}
	secs, err := parseOffset(offset)
	if err != nil {
		return MarketHours{}, err
	}
	h.Location = time.FixedZone("UTC"+strings.TrimSpace(offset), secs)
	return h, nil
}

func parseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: bad clock %q", ErrInvalidHours, s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: bad clock %q", ErrInvalidHours, s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

func parseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" {
		return 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}
	d, err := parseClock(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad offset", ErrInvalidHours)
	}
	return sign * int(d/time.Second), nil
}
