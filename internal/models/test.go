package models

import "time"

// Test is a published unit of questions a user takes in training or exam mode.
type Test struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CategoryID       *uint      `gorm:"index" json:"category_id,omitempty"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description,omitempty"`
	IsPublished      bool       `gorm:"not null;default:false" json:"is_published"`
	IsPremium        bool       `gorm:"not null;default:false" json:"is_premium"`
	PassingScore     int        `gorm:"not null" json:"passing_score"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
	Questions        []Question `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedBy        uint       `gorm:"index" json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (t *Test) TotalPoints() int {
	total := 0
	for _, q := range t.Questions {
		total += q.Points
	}
	return total
}

func (t *Test) FindQuestion(questionID uint) *Question {
	for i := range t.Questions {
		if t.Questions[i].ID == questionID {
			return &t.Questions[i]
		}
	}
	return nil
}

// TimeLimit reports the configured limit, if any.
func (t *Test) TimeLimit() (time.Duration, bool) {
	if t.TimeLimitMinutes == nil || *t.TimeLimitMinutes <= 0 {
		return 0, false
	}
	return time.Duration(*t.TimeLimitMinutes) * time.Minute, true
}
