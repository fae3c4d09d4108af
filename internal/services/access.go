package services

import "github.com/MikeGii/medunacy-sub000/internal/models"

// CanAccess reports whether user may take test. Roles grant no bypass here;
// subscription status can change at any time, so callers evaluate it per request.
func CanAccess(user *models.User, test *models.Test) bool {
	if user == nil || test == nil {
		return false
	}
	if !test.IsPublished {
		return false
	}
	return !test.IsPremium || user.IsPremium()
}
