package domain

import (
	"math"
	"strings"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// QuizQuestion is a single generated question. Options always has
// OptionCount entries and Correct is a zero-based index into it.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Validate checks the structural invariants of a question.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question text is required")
	}
	if len(q.Options) != OptionCount {
		return NewValidationError("question must have exactly 4 options")
	}
	if q.Correct < 0 || q.Correct >= OptionCount {
		return NewValidationError("correct option index must be between 0 and 3")
	}
	return nil
}

// QuizData is the ordered question list exchanged with models and clients.
type QuizData struct {
	Questions []QuizQuestion `json:"questions"`
}

// Len returns the number of questions, treating a nil quiz as empty.
func (q *QuizData) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Questions)
}

// QuestionResult is the grading of one answered question.
type QuestionResult struct {
	Index       int    `json:"index"`
	Selected    int    `json:"selected"`
	Correct     int    `json:"correct"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// ScoreReport summarizes a graded quiz attempt.
type ScoreReport struct {
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// ScoreQuiz grades answers against quiz. answers[i] is the selected option
// for question i; missing entries and -1 count as unanswered.
func ScoreQuiz(quiz QuizData, answers []int) ScoreReport {
	report := ScoreReport{
		Total:   len(quiz.Questions),
		Results: make([]QuestionResult, 0, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		selected := -1
		if i < len(answers) {
			selected = answers[i]
		}
		ok := selected >= 0 && selected == q.Correct
		if ok {
			report.Score++
		}
		report.Results = append(report.Results, QuestionResult{
			Index:       i,
			Selected:    selected,
			Correct:     q.Correct,
			IsCorrect:   ok,
			Explanation: q.Explanation,
		})
	}
	if report.Total > 0 {
		report.Percentage = int(math.Round(float64(report.Score) * 100 / float64(report.Total)))
	}
	return report
}
