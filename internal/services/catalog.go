package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository"
)

var ErrInvalidTest = errors.New("invalid test definition")

type TestService struct {
	tests TestStore
	users UserStore
}

func NewTestService(tests TestStore, users UserStore) *TestService {
	return &TestService{tests: tests, users: users}
}

type OptionInput struct {
	Text      string `json:"text" binding:"required" example:"Adrenaline"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text        string        `json:"text" binding:"required" example:"First-line drug in anaphylaxis?"`
	Points      int           `json:"points" example:"1"`
	Explanation string        `json:"explanation,omitempty"`
	Options     []OptionInput `json:"options"`
}

type CreateTestInput struct {
	CategoryID       *uint           `json:"category_id,omitempty"`
	Title            string          `json:"title" binding:"required" example:"Emergency medicine I"`
	Description      string          `json:"description,omitempty"`
	IsPublished      bool            `json:"is_published"`
	IsPremium        bool            `json:"is_premium"`
	PassingScore     int             `json:"passing_score" example:"70"`
	TimeLimitMinutes *int            `json:"time_limit_minutes,omitempty" example:"30"`
	Questions        []QuestionInput `json:"questions"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Points  int          `json:"points"`
	Options []OptionView `json:"options"`
}

// TestView is a test as shown to a test-taker: no correctness flags, no explanations.
type TestView struct {
	ID               uint           `json:"id"`
	CategoryID       *uint          `json:"category_id,omitempty"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	IsPremium        bool           `json:"is_premium"`
	PassingScore     int            `json:"passing_score"`
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	TotalPoints      int            `json:"total_points"`
	Questions        []QuestionView `json:"questions"`
}

type TestSummary struct {
	ID               uint   `json:"id"`
	CategoryID       *uint  `json:"category_id,omitempty"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	IsPremium        bool   `json:"is_premium"`
	PassingScore     int    `json:"passing_score"`
	TimeLimitMinutes *int   `json:"time_limit_minutes,omitempty"`
	QuestionCount    int    `json:"question_count"`
	CanAccess        bool   `json:"can_access"`
}

func NewTestView(test *models.Test) TestView {
	v := TestView{
		ID:               test.ID,
		CategoryID:       test.CategoryID,
		Title:            test.Title,
		Description:      test.Description,
		IsPremium:        test.IsPremium,
		PassingScore:     test.PassingScore,
		TimeLimitMinutes: test.TimeLimitMinutes,
		TotalPoints:      test.TotalPoints(),
		Questions:        make([]QuestionView, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Points: q.Points, Options: make([]OptionView, 0, len(q.Options))}
		for _, o := range q.Options {
			qv.Options = append(qv.Options, OptionView{ID: o.ID, Text: o.Text})
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

// ListForUser lists published tests; premium tests the user cannot take are
// included with CanAccess false so the client can offer an upgrade.
func (s *TestService) ListForUser(ctx context.Context, userID uint, categoryID *uint) ([]TestSummary, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	tests, err := s.tests.ListTests(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}

	out := make([]TestSummary, 0, len(tests))
	for i := range tests {
		t := &tests[i]
		if !t.IsPublished {
			continue
		}
		out = append(out, TestSummary{
			ID:               t.ID,
			CategoryID:       t.CategoryID,
			Title:            t.Title,
			Description:      t.Description,
			IsPremium:        t.IsPremium,
			PassingScore:     t.PassingScore,
			TimeLimitMinutes: t.TimeLimitMinutes,
			QuestionCount:    len(t.Questions),
			CanAccess:        CanAccess(user, t),
		})
	}
	return out, nil
}

func (s *TestService) GetForTaking(ctx context.Context, userID, testID uint) (*TestView, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test %d: %w", testID, err)
	}
	if !CanAccess(user, test) {
		return nil, ErrAccessDenied
	}
	v := NewTestView(test)
	return &v, nil
}

func (s *TestService) CreateTest(ctx context.Context, creatorID uint, in CreateTestInput) (*models.Test, error) {
	if err := validateTestInput(in); err != nil {
		return nil, err
	}

	test := models.Test{
		CategoryID:       in.CategoryID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		IsPublished:      in.IsPublished,
		IsPremium:        in.IsPremium,
		PassingScore:     in.PassingScore,
		TimeLimitMinutes: in.TimeLimitMinutes,
		CreatedBy:        creatorID,
	}
	for i, qi := range in.Questions {
		q := models.Question{
			Text:        strings.TrimSpace(qi.Text),
			Points:      qi.Points,
			OrderNum:    i,
			Explanation: qi.Explanation,
		}
		for j, oi := range qi.Options {
			q.Options = append(q.Options, models.Option{
				Text:      strings.TrimSpace(oi.Text),
				IsCorrect: oi.IsCorrect,
				OrderNum:  j,
			})
		}
		test.Questions = append(test.Questions, q)
	}

	if err := s.tests.CreateTest(ctx, &test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	return &test, nil
}

func (s *TestService) SetFlags(ctx context.Context, testID uint, published, premium *bool) (*models.Test, error) {
	test, err := s.tests.UpdateTestFlags(ctx, testID, published, premium)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("update test %d: %w", testID, err)
	}
	return test, nil
}

func (s *TestService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidTest)
	}
	cat := models.Category{Name: name, Description: description}
	if err := s.tests.CreateCategory(ctx, &cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &cat, nil
}

func validateTestInput(in CreateTestInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTest)
	}
	if in.PassingScore < 0 || in.PassingScore > 100 {
		return fmt.Errorf("%w: passing score must be between 0 and 100", ErrInvalidTest)
	}
	if in.TimeLimitMinutes != nil && *in.TimeLimitMinutes <= 0 {
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidTest)
	}
	for i, q := range in.Questions {
		n := i + 1
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidTest, n)
		}
		if q.Points <= 0 {
			return fmt.Errorf("%w: question %d must be worth at least one point", ErrInvalidTest, n)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidTest, n)
		}
		correct := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o.Text) == "" {
				return fmt.Errorf("%w: question %d has an empty option", ErrInvalidTest, n)
			}
			if o.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return fmt.Errorf("%w: question %d has no correct option", ErrInvalidTest, n)
		}
	}
	return nil
}

// Get returns the full test definition, correctness included, for authoring.
func (s *TestService) Get(ctx context.Context, testID uint) (*models.Test, error) {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test %d: %w", testID, err)
	}
	return test, nil
}
