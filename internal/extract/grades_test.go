package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseMarkFraction(t *testing.T) {
	tests := []struct {
		name string
		text *string
		want MarkFraction
	}{
		{"full marks", strPtr("Mark 1.00 out of 1.00"), MarkFraction{Achieved: 1, Total: 1, HasAchieved: true, HasTotal: true}},
		{"partial", strPtr("Mark 0.50 out of 1.00"), MarkFraction{Achieved: 0.5, Total: 1, HasAchieved: true, HasTotal: true}},
		{"case insensitive", strPtr("2 OUT OF 4"), MarkFraction{Achieved: 2, Total: 4, HasAchieved: true, HasTotal: true}},
		{"bare number", strPtr("Marked out of 2.00"), MarkFraction{Achieved: 2, HasAchieved: true}},
		{"leading dot", strPtr("Mark .75 out of 1"), MarkFraction{Achieved: 0.75, Total: 1, HasAchieved: true, HasTotal: true}},
		{"no number", strPtr("Not yet graded"), MarkFraction{}},
		{"lone dot", strPtr("Mark . out of ."), MarkFraction{}},
		{"nil", nil, MarkFraction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMarkFraction(tt.text))
		})
	}
}

func TestParseSummaryGrade(t *testing.T) {
	tests := []struct {
		name   string
		markup *string
		want   SummaryGrade
	}{
		{
			name:   "score and percentage",
			markup: strPtr("<b>8.50</b> out of 10.00 (<b>85.00</b>%)"),
			want:   SummaryGrade{Score: 8.5, Total: 10, Percentage: 85, HasScore: true, HasTotal: true, HasPercentage: true},
		},
		{
			name:   "percentage only",
			markup: strPtr("Grade hidden (<b>40.00</b>%)"),
			want:   SummaryGrade{Percentage: 40, HasPercentage: true},
		},
		{
			name:   "score only",
			markup: strPtr("<strong>32.05</strong> out of 40.00"),
			want:   SummaryGrade{Score: 32.05, Total: 40, HasScore: true, HasTotal: true},
		},
		{
			name:   "plain text is not enough",
			markup: strPtr("8.50 out of 10.00 (85.00%)"),
			want:   SummaryGrade{},
		},
		{"nil", nil, SummaryGrade{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSummaryGrade(tt.markup))
		})
	}
}

func TestClassifyState(t *testing.T) {
	one, half, zero := 1.0, 0.5, 0.0

	assert.Equal(t, "Correct", string(ClassifyState(&one, &one)))
	assert.Equal(t, "Partially Correct", string(ClassifyState(&half, &one)))
	assert.Equal(t, "Incorrect", string(ClassifyState(&zero, &one)))
	assert.Equal(t, "Correct", string(ClassifyState(&zero, &zero)))
	assert.Equal(t, "Unknown", string(ClassifyState(nil, &one)))
	assert.Equal(t, "Unknown", string(ClassifyState(&one, nil)))
}
