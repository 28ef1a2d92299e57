package extract

import (
	"github.com/PuerkitoBio/goquery"

	"quiz-review-service/internal/domain"
)

// ClassifyState derives a question's state from its marks. Either mark missing
// means the state is unknown.
func ClassifyState(achieved, total *float64) domain.QuestionState {
	if achieved == nil || total == nil {
		return domain.StateUnknown
	}
	switch {
	case *achieved == *total:
		return domain.StateCorrect
	case *achieved > 0:
		return domain.StatePartiallyCorrect
	default:
		return domain.StateIncorrect
	}
}

// question builds the record for one .que container. Missing regions leave
// their fields absent.
func (e *Extractor) question(que *goquery.Selection) domain.Question {
	info := que.Find(".info").First()
	content := que.Find(".content").First()
	outcome := que.Find(".outcome").First()

	gradeText := textAt(info, ".grade")
	marks := ParseMarkFraction(gradeText)
	achieved := e.mark(marks.Achieved, marks.HasAchieved)
	total := e.mark(marks.Total, marks.HasTotal)

	questionText := ""
	if qtext := markupAt(content, ".qtext"); qtext != nil {
		questionText = *qtext
	}

	original, _ := goquery.OuterHtml(que)

	return domain.Question{
		Info: domain.QuestionInfo{
			GradeText:    gradeText,
			MarkAchieved: achieved,
			MarkTotal:    total,
		},
		Content: domain.QuestionContent{
			QuestionTextHTML: questionText,
			PromptHTML:       markupAt(content, ".prompt"),
			UserAnswers:      collectAnswers(content),
		},
		Outcome: domain.QuestionOutcome{
			GeneralFeedbackHTML: markupAt(outcome, ".generalfeedback"),
			CorrectAnswerHTML:   markupAt(outcome, ".rightanswer"),
		},
		State:        ClassifyState(achieved, total),
		OriginalHTML: original,
	}
}
