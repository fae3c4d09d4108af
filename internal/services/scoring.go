package services

import (
	"sort"

	"github.com/MikeGii/medunacy-sub000/internal/models"
)

type ScoringService struct{}

func NewScoringService() *ScoringService {
	return &ScoringService{}
}

type ScoreOutcome struct {
	Questions           []models.QuestionOutcome `json:"questions"`
	CorrectAnswers      int                      `json:"correct_answers"`
	IncorrectAnswers    int                      `json:"incorrect_answers"`
	TotalPointsEarned   int                      `json:"total_points_earned"`
	TotalPossiblePoints int                      `json:"total_possible_points"`
	ScorePercentage     int                      `json:"score_percentage"`
	PassingScore        int                      `json:"passing_score"`
	Passed              bool                     `json:"passed"`
}

// Score grades answers (question id -> selected option ids) against test.
// Questions without an entry in answers count as incorrect.
func (s *ScoringService) Score(test *models.Test, answers map[uint][]uint) ScoreOutcome {
	out := ScoreOutcome{
		Questions:    make([]models.QuestionOutcome, 0, len(test.Questions)),
		PassingScore: test.PassingScore,
	}

	for i := range test.Questions {
		q := &test.Questions[i]
		qo := s.EvaluateQuestion(q, answers[q.ID])
		if qo.IsCorrect {
			out.CorrectAnswers++
		}
		out.TotalPointsEarned += qo.PointsEarned
		out.TotalPossiblePoints += qo.PointsPossible
		out.Questions = append(out.Questions, qo)
	}

	out.IncorrectAnswers = len(test.Questions) - out.CorrectAnswers
	out.ScorePercentage = percentage(out.TotalPointsEarned, out.TotalPossiblePoints)
	out.Passed = out.ScorePercentage >= test.PassingScore
	return out
}

// EvaluateQuestion applies the all-or-nothing rule: the selection must equal
// the set of correct options exactly.
func (s *ScoringService) EvaluateQuestion(q *models.Question, selected []uint) models.QuestionOutcome {
	sel := normalizeIDs(selected)
	correct := q.CorrectOptionIDs()

	qo := models.QuestionOutcome{
		QuestionID:        q.ID,
		SelectedOptionIDs: sel,
		CorrectOptionIDs:  correct,
		IsCorrect:         len(correct) > 0 && equalIDs(sel, correct),
		PointsPossible:    q.Points,
	}
	if qo.IsCorrect {
		qo.PointsEarned = q.Points
	}
	return qo
}

// percentage rounds earned/possible*100 half up using integers only.
func percentage(earned, possible int) int {
	if possible <= 0 {
		return 0
	}
	return (earned*200 + possible) / (2 * possible)
}

// normalizeIDs returns a sorted copy of ids without duplicates, never nil.
func normalizeIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
