package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"quiz-review-service/internal/domain"
)

// answerOptionSelector matches the r0/r1/... option rows of an answer block.
const answerOptionSelector = `.answer > div[class^="r"]`

// answerMarkers is the fixed set of marker classes the LMS puts on option rows.
var answerMarkers = map[string]domain.Correctness{
	"r0": domain.Incorrect,
	"r1": domain.Correct,
}

// collectAnswers returns every option row under content in document order.
func collectAnswers(content *goquery.Selection) []domain.UserAnswer {
	answers := make([]domain.UserAnswer, 0)
	if content == nil || content.Length() == 0 {
		return answers
	}
	content.Find(answerOptionSelector).Each(func(_ int, option *goquery.Selection) {
		inner, _ := option.Html()
		correctness := correctnessOf(option)
		answers = append(answers, domain.UserAnswer{
			AnswerHTML:  strings.TrimSpace(inner),
			IsCorrect:   correctness == domain.Correct,
			Correctness: correctness,
		})
	})
	return answers
}

// correctnessOf is Correct only when the class set carries the correct marker.
func correctnessOf(option *goquery.Selection) domain.Correctness {
	class, _ := option.Attr("class")
	for _, name := range strings.Fields(class) {
		if answerMarkers[name] == domain.Correct {
			return domain.Correct
		}
	}
	return domain.Incorrect
}
