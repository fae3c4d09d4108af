package models

import "time"

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	FullName         string    `gorm:"size:255" json:"full_name"`
	Role             string    `gorm:"size:20;not null;default:'user'" json:"role"`
	SubscriptionTier string    `gorm:"size:20;not null;default:'free'" json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"

	TierFree    = "free"
	TierPremium = "premium"
)

func (u *User) IsPremium() bool {
	return u.SubscriptionTier == TierPremium
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleDoctor || role == RoleAdmin
}

func ValidTier(tier string) bool {
	return tier == TierFree || tier == TierPremium
}
