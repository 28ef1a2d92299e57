package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// completedOnLayouts are the English layouts the LMS renders attempt dates in.
var completedOnLayouts = []string{
	"Monday, 2 January 2006, 3:04 PM",
	"Monday, 2 January 2006, 15:04",
	"2 January 2006, 3:04 PM",
	"2 January 2006, 15:04",
}

var timeTakenPattern = regexp.MustCompile(`(?i)(\d+)\s*(day|hour|min|sec)`)

var timeTakenUnits = map[string]int64{
	"day":  24 * 60 * 60,
	"hour": 60 * 60,
	"min":  60,
	"sec":  1,
}

// ParseCompletedOn parses text like "Monday, 01 April 2024, 10:00 AM".
// The page carries no zone, so the result is in UTC.
func ParseCompletedOn(text *string) *time.Time {
	if text == nil {
		return nil
	}
	raw := strings.Join(strings.Fields(*text), " ")
	for _, layout := range completedOnLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// ParseTimeTaken converts "1 hour 15 mins 30 secs" into seconds. Text without
// any recognised unit, or a total that does not fit in int64, yields nil.
func ParseTimeTaken(text *string) *int64 {
	if text == nil {
		return nil
	}
	matches := timeTakenPattern.FindAllStringSubmatch(*text, -1)
	if len(matches) == 0 {
		return nil
	}
	var seconds int64
	for _, m := range matches {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil
		}
		unit := timeTakenUnits[strings.ToLower(m[2])]
		if n > (math.MaxInt64-seconds)/unit {
			return nil
		}
		seconds += n * unit
	}
	return &seconds
}
