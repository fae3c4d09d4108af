package services

import (
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"github.com/google/uuid"
)

// AssembleResult freezes a scored session into the record that is stored and
// served from then on. It does not touch the store.
func AssembleResult(session *models.Session, outcome ScoreOutcome, submittedAt time.Time) *models.Result {
	elapsed := submittedAt.Sub(session.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	overTime := false
	if session.Test != nil {
		if limit, ok := session.Test.TimeLimit(); ok && elapsed > limit {
			overTime = true
		}
	}

	questions := make([]models.QuestionOutcome, len(outcome.Questions))
	copy(questions, outcome.Questions)

	return &models.Result{
		ID:                  uuid.New(),
		SessionID:           session.ID,
		UserID:              session.UserID,
		TestID:              session.TestID,
		Mode:                session.Mode,
		Questions:           questions,
		CorrectAnswers:      outcome.CorrectAnswers,
		IncorrectAnswers:    outcome.IncorrectAnswers,
		TotalPointsEarned:   outcome.TotalPointsEarned,
		TotalPossiblePoints: outcome.TotalPossiblePoints,
		ScorePercentage:     outcome.ScorePercentage,
		PassingScore:        outcome.PassingScore,
		Passed:              outcome.Passed,
		TimeSpentSeconds:    int64(elapsed / time.Second),
		OverTimeLimit:       overTime,
		StartedAt:           session.StartedAt,
		SubmittedAt:         submittedAt,
	}
}
