package models

import "sort"

type Question struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	TestID      uint     `gorm:"not null;index" json:"test_id"`
	Text        string   `gorm:"type:text;not null" json:"text"`
	Points      int      `gorm:"not null;default:1" json:"points"`
	OrderNum    int      `gorm:"not null" json:"order_num"`
	Explanation string   `gorm:"type:text" json:"explanation,omitempty"`
	Options     []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// CorrectOptionIDs returns the ids of options marked correct, ascending.
func (q *Question) CorrectOptionIDs() []uint {
	ids := make([]uint, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

func (q *Question) HasOption(optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
