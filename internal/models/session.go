package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SessionStatusInProgress = "in_progress"
	SessionStatusSubmitted  = "submitted"
	SessionStatusAbandoned  = "abandoned"
)

type Session struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	TestID      uint            `gorm:"not null;index" json:"test_id"`
	Mode        string          `gorm:"size:10;not null" json:"mode"`
	Status      string          `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	StartedAt   time.Time       `gorm:"not null;index" json:"started_at"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	Snapshot    datatypes.JSON  `json:"-"`
	Test        *Test           `gorm:"-" json:"-"`
	Answers     []SessionAnswer `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"answers"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s *Session) InProgress() bool {
	return s.Status == SessionStatusInProgress
}

// AnswerMap returns question id -> selected option ids.
func (s *Session) AnswerMap() map[uint][]uint {
	m := make(map[uint][]uint, len(s.Answers))
	for _, a := range s.Answers {
		m[a.QuestionID] = a.Selected
	}
	return m
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.Test == nil {
		return fmt.Errorf("session %s has no test snapshot", s.ID)
	}
	raw, err := json.Marshal(s.Test)
	if err != nil {
		return err
	}
	s.Snapshot = raw
	return nil
}

func (s *Session) AfterFind(tx *gorm.DB) error {
	if len(s.Snapshot) == 0 {
		return nil
	}
	var t Test
	if err := json.Unmarshal(s.Snapshot, &t); err != nil {
		return fmt.Errorf("decode snapshot of session %s: %w", s.ID, err)
	}
	s.Test = &t
	return nil
}

// SessionAnswer holds the current selection for one question; a re-answer replaces it.
type SessionAnswer struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	SessionID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_session_question" json:"-"`
	QuestionID uint           `gorm:"not null;uniqueIndex:idx_session_question" json:"question_id"`
	OptionIDs  datatypes.JSON `json:"-"`
	Selected   []uint         `gorm:"-" json:"option_ids"`
	AnsweredAt time.Time      `json:"answered_at"`
}

func (a *SessionAnswer) BeforeSave(tx *gorm.DB) error {
	sel := a.Selected
	if sel == nil {
		sel = []uint{}
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	a.OptionIDs = raw
	return nil
}

func (a *SessionAnswer) AfterFind(tx *gorm.DB) error {
	if len(a.OptionIDs) == 0 {
		a.Selected = []uint{}
		return nil
	}
	return json.Unmarshal(a.OptionIDs, &a.Selected)
}
