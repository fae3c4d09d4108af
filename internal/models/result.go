package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionOutcome struct {
	QuestionID        uint   `json:"question_id"`
	SelectedOptionIDs []uint `json:"selected_option_ids"`
	CorrectOptionIDs  []uint `json:"correct_option_ids"`
	IsCorrect         bool   `json:"is_correct"`
	PointsEarned      int    `json:"points_earned"`
	PointsPossible    int    `json:"points_possible"`
}

// Result is written once when a session is submitted and never updated.
type Result struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID           uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	UserID              uint              `gorm:"not null;index" json:"user_id"`
	TestID              uint              `gorm:"not null;index" json:"test_id"`
	Mode                string            `gorm:"size:10;not null" json:"mode"`
	Outcomes            datatypes.JSON    `json:"-"`
	Questions           []QuestionOutcome `gorm:"-" json:"questions"`
	CorrectAnswers      int               `gorm:"not null" json:"correct_answers"`
	IncorrectAnswers    int               `gorm:"not null" json:"incorrect_answers"`
	TotalPointsEarned   int               `gorm:"not null" json:"total_points_earned"`
	TotalPossiblePoints int               `gorm:"not null" json:"total_possible_points"`
	ScorePercentage     int               `gorm:"not null" json:"score_percentage"`
	PassingScore        int               `gorm:"not null" json:"passing_score"`
	Passed              bool              `gorm:"not null" json:"passed"`
	TimeSpentSeconds    int64             `gorm:"not null" json:"time_spent_seconds"`
	OverTimeLimit       bool              `gorm:"not null;default:false" json:"over_time_limit"`
	StartedAt           time.Time         `json:"started_at"`
	SubmittedAt         time.Time         `json:"submitted_at"`
	CreatedAt           time.Time         `json:"created_at"`
}

func (r *Result) BeforeCreate(tx *gorm.DB) error {
	raw, err := json.Marshal(r.Questions)
	if err != nil {
		return err
	}
	r.Outcomes = raw
	return nil
}

func (r *Result) AfterFind(tx *gorm.DB) error {
	if len(r.Outcomes) == 0 {
		return nil
	}
	return json.Unmarshal(r.Outcomes, &r.Questions)
}
