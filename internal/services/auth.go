package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidAccess      = errors.New("unknown role or subscription tier")
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	users     UserStore
	jwtSecret []byte
	clock     Clock
}

func NewAuthService(users UserStore, jwtSecret string, clock Clock) *AuthService {
	return &AuthService{users: users, jwtSecret: []byte(jwtSecret), clock: clock}
}

func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	user := models.User{
		Email:            email,
		PasswordHash:     string(hash),
		FullName:         fullName,
		Role:             models.RoleUser,
		SubscriptionTier: models.TierFree,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return "", nil, err
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GenerateToken carries only the user id; role and tier are always read from the store.
func (s *AuthService) GenerateToken(userID uint) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(tokenTTL).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, ErrInvalidToken
	}

	return uint(userIDFloat), nil
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	return loadUser(ctx, s.users, userID)
}

// SetAccess changes a user's role and subscription tier. Empty values keep the current one.
func (s *UserService) SetAccess(ctx context.Context, userID uint, role, tier string) (*models.User, error) {
	if (role != "" && !models.ValidRole(role)) || (tier != "" && !models.ValidTier(tier)) {
		return nil, ErrInvalidAccess
	}
	user, err := s.users.UpdateUserAccess(ctx, userID, role, tier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user %d: %w", userID, err)
	}
	return user, nil
}
