package extract

import (
	"regexp"
	"strconv"
)

// number never matches a lone "." so a successful match always parses.
const number = `(\d*\.?\d+)`

var (
	markFractionPattern = regexp.MustCompile(`(?i)` + number + `\s*out of\s*` + number)
	bareMarkPattern     = regexp.MustCompile(number)

	// Summary grades emphasise the score and percentage, so these run on markup.
	summaryScorePattern   = regexp.MustCompile(`(?i)<(?:b|strong)>` + number + `</(?:b|strong)>\s*out of\s*` + number)
	summaryPercentPattern = regexp.MustCompile(`(?i)\(<(?:b|strong)>` + number + `</(?:b|strong)>%\)`)
)

// MarkFraction is a per-question mark such as "Mark 0.50 out of 1.00".
// Unmatched values stay 0 with their Has flag unset.
type MarkFraction struct {
	Achieved    float64
	Total       float64
	HasAchieved bool
	HasTotal    bool
}

// SummaryGrade is the attempt grade from the summary table.
type SummaryGrade struct {
	Score         float64
	Total         float64
	Percentage    float64
	HasScore      bool
	HasTotal      bool
	HasPercentage bool
}

// ParseMarkFraction reads "<n> out of <n>", falling back to a single bare number
// which is taken as the achieved mark.
func ParseMarkFraction(text *string) MarkFraction {
	var res MarkFraction
	if text == nil {
		return res
	}
	if m := markFractionPattern.FindStringSubmatch(*text); m != nil {
		res.Achieved, res.HasAchieved = parseNumber(m[1])
		res.Total, res.HasTotal = parseNumber(m[2])
		return res
	}
	if m := bareMarkPattern.FindStringSubmatch(*text); m != nil {
		res.Achieved, res.HasAchieved = parseNumber(m[1])
	}
	return res
}

// ParseSummaryGrade reads score/total and percentage independently from the
// grade box markup, e.g. "<b>8.50</b> out of 10.00 (<b>85.00</b>%)".
func ParseSummaryGrade(markup *string) SummaryGrade {
	var res SummaryGrade
	if markup == nil {
		return res
	}
	if m := summaryScorePattern.FindStringSubmatch(*markup); m != nil {
		res.Score, res.HasScore = parseNumber(m[1])
		res.Total, res.HasTotal = parseNumber(m[2])
	}
	if m := summaryPercentPattern.FindStringSubmatch(*markup); m != nil {
		res.Percentage, res.HasPercentage = parseNumber(m[1])
	}
	return res
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
