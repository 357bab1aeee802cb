// Package scoring computes quiz results from a question set and a student's
// chosen-answer list. It is pure: no I/O, no clock, no storage.
package scoring

import (
	"math"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// Result is the outcome of scoring one attempt.
type Result struct {
	Earned    int     `json:"earned"`
	MaxPoints int     `json:"max_points"`
	Percent   float64 `json:"percent"`
	Correct   []bool  `json:"correct"`
}

// Score grades answers against the quiz's question set. answers is positional:
// answers[i] is the chosen choice index for questions[i], nil meaning
// unanswered. A shorter answer list is treated as nil-padded, mirroring web
// forms where unchecked radio groups submit nothing. Out-of-range answer
// values count as incorrect, not as errors: the scorer never assumes its
// input was validated against the choice lists.
//
// Score is total for well-formed questions: a quiz with zero questions or
// zero total points yields 0.0 rather than dividing by zero.
func Score(questions []models.Question, answers []*int) Result {
	result := Result{Correct: make([]bool, len(questions))}

	for i, question := range questions {
		result.MaxPoints += question.Points

		var answer *int
		if i < len(answers) {
			answer = answers[i]
		}
		if answer != nil && *answer == question.CorrectIndex {
			result.Correct[i] = true
			result.Earned += question.Points
		}
	}

	if result.MaxPoints > 0 {
		result.Percent = round2(100 * float64(result.Earned) / float64(result.MaxPoints))
	}

	return result
}

// PadAnswers extends answers with nils to the given length. Extra trailing
// entries are kept; the scorer ignores them.
func PadAnswers(answers []*int, length int) []*int {
	if len(answers) >= length {
		return answers
	}
	padded := make([]*int, length)
	copy(padded, answers)
	return padded
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
