package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	auth := NewAuthService(store, "test-secret", newFakeClock(baseTime))

	token, user, err := auth.Register(ctx, " Student@Example.com ", "password123", "Mari Tamm")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "student@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
	if user.SubscriptionTier != models.TierFree || user.Role != models.RoleUser {
		t.Errorf("Expected a free user, got tier=%s role=%s", user.SubscriptionTier, user.Role)
	}

	id, err := auth.ValidateToken(token)
	if err != nil || id != user.ID {
		t.Errorf("Expected token for user %d, got %d (%v)", user.ID, id, err)
	}

	if _, _, err := auth.Register(ctx, "student@example.com", "other", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}

	if _, _, err := auth.Login(ctx, "STUDENT@example.com", "password123"); err != nil {
		t.Errorf("Expected login to succeed, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "student@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestValidateToken(t *testing.T) {
	clock := newFakeClock(baseTime)
	auth := NewAuthService(memory.NewStore(), "test-secret", clock)
	other := NewAuthService(memory.NewStore(), "other-secret", clock)

	token, err := auth.GenerateToken(42)
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := other.GenerateToken(42)

	if _, err := auth.ValidateToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected a token signed with another secret to be rejected, got %v", err)
	}
	if _, err := auth.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected garbage to be rejected, got %v", err)
	}

	clock.Advance(25 * time.Hour)
	if _, err := auth.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected an expired token to be rejected, got %v", err)
	}
}

func TestSetAccess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := NewUserService(store)
	store.CreateUser(ctx, &models.User{ID: 5, Email: "a@example.com"})

	user, err := users.SetAccess(ctx, 5, "", models.TierPremium)
	if err != nil {
		t.Fatal(err)
	}
	if !user.IsPremium() || user.Role != models.RoleUser {
		t.Errorf("Expected premium user with unchanged role, got tier=%s role=%s", user.SubscriptionTier, user.Role)
	}

	if _, err := users.SetAccess(ctx, 5, "", "gold"); !errors.Is(err, ErrInvalidAccess) {
		t.Errorf("Expected ErrInvalidAccess, got %v", err)
	}
	if _, err := users.SetAccess(ctx, 99, models.RoleDoctor, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
