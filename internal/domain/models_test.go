package domain

import "testing"

func TestTallyCountsStatesAndAnswers(t *testing.T) {
	paper := QuestionPaper{
		Questions: []Question{
			{State: StateCorrect, Content: QuestionContent{UserAnswers: []UserAnswer{{IsCorrect: true}}}},
			{State: StatePartiallyCorrect, Content: QuestionContent{UserAnswers: []UserAnswer{{IsCorrect: true}, {IsCorrect: false}}}},
			{State: StateIncorrect},
			{State: StateUnknown},
		},
	}

	got := paper.Tally()
	want := Tally{Questions: 4, Correct: 1, PartiallyCorrect: 1, Incorrect: 1, Unknown: 1, Answers: 3, CorrectAnswers: 2}
	if got != want {
		t.Fatalf("unexpected tally %+v, want %+v", got, want)
	}
}
