package services

import (
	"testing"

	"github.com/MikeGii/medunacy-sub000/internal/models"
)

func TestCanAccess(t *testing.T) {
	free := &models.User{ID: 1, SubscriptionTier: models.TierFree}
	premium := &models.User{ID: 2, SubscriptionTier: models.TierPremium}
	freeAdmin := &models.User{ID: 3, Role: models.RoleAdmin, SubscriptionTier: models.TierFree}

	testCases := []struct {
		name      string
		user      *models.User
		published bool
		isPremium bool
		expected  bool
	}{
		{"free user, open test", free, true, false, true},
		{"premium user, open test", premium, true, false, true},
		{"free user, premium test", free, true, true, false},
		{"premium user, premium test", premium, true, true, true},
		{"admin role grants no premium bypass", freeAdmin, true, true, false},
		{"unpublished open test", premium, false, false, false},
		{"unpublished premium test", premium, false, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			test := &models.Test{IsPublished: tc.published, IsPremium: tc.isPremium}
			if got := CanAccess(tc.user, test); got != tc.expected {
				t.Errorf("Expected CanAccess %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCanAccessNilInputs(t *testing.T) {
	if CanAccess(nil, &models.Test{IsPublished: true}) {
		t.Error("Expected false for nil user")
	}
	if CanAccess(&models.User{}, nil) {
		t.Error("Expected false for nil test")
	}
}

func TestCanAccessFollowsTierChanges(t *testing.T) {
	user := &models.User{SubscriptionTier: models.TierPremium}
	test := &models.Test{IsPublished: true, IsPremium: true}

	if !CanAccess(user, test) {
		t.Fatal("Expected premium user to access premium test")
	}
	user.SubscriptionTier = models.TierFree
	if CanAccess(user, test) {
		t.Error("Expected access to end once the subscription lapses")
	}
}
