package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Tests       []Test    `gorm:"foreignKey:CategoryID" json:"tests,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
