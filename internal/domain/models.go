package domain

import "time"

// QuestionState is the outcome derived from a question's marks.
type QuestionState string

const (
	StateCorrect          QuestionState = "Correct"
	StatePartiallyCorrect QuestionState = "Partially Correct"
	StateIncorrect        QuestionState = "Incorrect"
	StateUnknown          QuestionState = "Unknown"
)

// Correctness tags a submitted answer option from its marker class.
type Correctness string

const (
	Correct   Correctness = "correct"
	Incorrect Correctness = "incorrect"
)

// UserAnswer is one submitted answer option.
type UserAnswer struct {
	AnswerHTML  string      `json:"answerHtml"`
	IsCorrect   bool        `json:"isCorrect"`
	Correctness Correctness `json:"correctness"`
}

// QuestionInfo holds the grade line of a question.
type QuestionInfo struct {
	GradeText    *string  `json:"gradeText"`
	MarkAchieved *float64 `json:"markAchieved"`
	MarkTotal    *float64 `json:"markTotal"`
}

// QuestionContent holds the prompt and the submitted answers.
type QuestionContent struct {
	QuestionTextHTML string       `json:"questionTextHtml"` // never absent, may be empty
	PromptHTML       *string      `json:"promptHtml"`
	UserAnswers      []UserAnswer `json:"userAnswers"`
}

// QuestionOutcome holds feedback shown after grading.
type QuestionOutcome struct {
	GeneralFeedbackHTML *string `json:"generalFeedbackHtml"`
	CorrectAnswerHTML   *string `json:"correctAnswerHtml"`
}

// Question is a single reviewed question.
type Question struct {
	Info         QuestionInfo    `json:"info"`
	Content      QuestionContent `json:"content"`
	Outcome      QuestionOutcome `json:"outcome"`
	State        QuestionState   `json:"state"`
	OriginalHTML string          `json:"originalHtml"`
}

// Summary captures the attempt summary table.
type Summary struct {
	CompletedOnText  *string    `json:"completedOnText"`
	CompletedOn      *time.Time `json:"completedOn"`
	TimeTakenText    *string    `json:"timeTakenText"`
	TimeTakenSeconds *int64     `json:"timeTakenSeconds"`
	GradeText        *string    `json:"gradeText"` // raw markup, emphasis tags kept
	GradeScore       *float64   `json:"gradeScore"`
	GradeTotal       *float64   `json:"gradeTotal"`
	GradePercentage  *float64   `json:"gradePercentage"`
}

// QuestionPaper is the structured form of a quiz review page.
type QuestionPaper struct {
	Breadcrumbs []string   `json:"breadcrumbs"`
	Title       *string    `json:"title"`
	Summary     Summary    `json:"summary"`
	Questions   []Question `json:"questions"`
}

// Tally counts questions per state.
type Tally struct {
	Questions        int `json:"questions"`
	Correct          int `json:"correct"`
	PartiallyCorrect int `json:"partiallyCorrect"`
	Incorrect        int `json:"incorrect"`
	Unknown          int `json:"unknown"`
	Answers          int `json:"answers"`
	CorrectAnswers   int `json:"correctAnswers"`
}

// Tally summarizes the paper's questions by state.
func (p QuestionPaper) Tally() Tally {
	t := Tally{Questions: len(p.Questions)}
	for _, q := range p.Questions {
		switch q.State {
		case StateCorrect:
			t.Correct++
		case StatePartiallyCorrect:
			t.PartiallyCorrect++
		case StateIncorrect:
			t.Incorrect++
		default:
			t.Unknown++
		}
		for _, a := range q.Content.UserAnswers {
			t.Answers++
			if a.IsCorrect {
				t.CorrectAnswers++
			}
		}
	}
	return t
}

// StoredPaper is an extracted paper as persisted by the service.
type StoredPaper struct {
	ID          string        `json:"id"`
	ExtractedAt time.Time     `json:"extractedAt"`
	Paper       QuestionPaper `json:"paper"`
}

// IngestEvent announces a newly stored paper to feed subscribers.
type IngestEvent struct {
	PaperID string  `json:"paperId"`
	Title   *string `json:"title"`
	Tally   Tally   `json:"tally"`
}
