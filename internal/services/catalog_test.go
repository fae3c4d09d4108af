package services

import (
	"context"
	"errors"
	"testing"

	"github.com/MikeGii/medunacy-sub000/internal/models"
)

func validInput() CreateTestInput {
	limit := 20
	return CreateTestInput{
		Title:            "Cardiology I",
		IsPublished:      true,
		PassingScore:     70,
		TimeLimitMinutes: &limit,
		Questions: []QuestionInput{
			{Text: "Q1", Points: 1, Options: []OptionInput{{Text: "A", IsCorrect: true}, {Text: "B"}}},
			{Text: "Q2", Points: 2, Options: []OptionInput{{Text: "A"}, {Text: "B", IsCorrect: true}, {Text: "C", IsCorrect: true}}},
		},
	}
}

func TestCreateTestValidation(t *testing.T) {
	zero := 0
	testCases := []struct {
		name   string
		mutate func(in *CreateTestInput)
		valid  bool
	}{
		{"valid", func(in *CreateTestInput) {}, true},
		{"no title", func(in *CreateTestInput) { in.Title = "  " }, false},
		{"passing score above 100", func(in *CreateTestInput) { in.PassingScore = 101 }, false},
		{"negative passing score", func(in *CreateTestInput) { in.PassingScore = -1 }, false},
		{"zero time limit", func(in *CreateTestInput) { in.TimeLimitMinutes = &zero }, false},
		{"zero points", func(in *CreateTestInput) { in.Questions[0].Points = 0 }, false},
		{"single option", func(in *CreateTestInput) { in.Questions[0].Options = in.Questions[0].Options[:1] }, false},
		{"no correct option", func(in *CreateTestInput) { in.Questions[0].Options[0].IsCorrect = false }, false},
		{"empty option text", func(in *CreateTestInput) { in.Questions[1].Options[2].Text = "" }, false},
		{"empty question text", func(in *CreateTestInput) { in.Questions[1].Text = "" }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			svc := NewTestService(h.store, h.store)
			in := validInput()
			tc.mutate(&in)

			test, err := svc.CreateTest(context.Background(), 1, in)
			if tc.valid {
				if err != nil {
					t.Fatalf("Expected valid input, got %v", err)
				}
				if test.ID == 0 || test.Questions[1].Options[2].ID == 0 {
					t.Error("Expected ids to be assigned")
				}
				if test.TotalPoints() != 3 {
					t.Errorf("Expected 3 total points, got %d", test.TotalPoints())
				}
				return
			}
			if !errors.Is(err, ErrInvalidTest) {
				t.Errorf("Expected ErrInvalidTest, got %v", err)
			}
		})
	}
}

func TestListForUserMarksPremiumTests(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewTestService(h.store, h.store)

	h.addTest(t, &models.Test{ID: 2, Title: "Premium", IsPublished: true, IsPremium: true})
	h.addTest(t, &models.Test{ID: 3, Title: "Draft", IsPublished: false})

	list, err := svc.ListForUser(ctx, h.free.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 published tests, got %d", len(list))
	}
	access := map[uint]bool{}
	for _, s := range list {
		access[s.ID] = s.CanAccess
	}
	if !access[testTwoQuestions] || access[2] {
		t.Errorf("Expected open test accessible and premium test locked, got %v", access)
	}

	premiumList, _ := svc.ListForUser(ctx, h.premium.ID, nil)
	for _, s := range premiumList {
		if !s.CanAccess {
			t.Errorf("Expected premium user to access test %d", s.ID)
		}
	}
}

func TestGetForTakingHidesCorrectness(t *testing.T) {
	h := newHarness(t)
	svc := NewTestService(h.store, h.store)

	view, err := svc.GetForTaking(context.Background(), h.free.ID, testTwoQuestions)
	if err != nil {
		t.Fatal(err)
	}
	if view.TotalPoints != 3 || len(view.Questions) != 2 || len(view.Questions[1].Options) != 3 {
		t.Errorf("Unexpected view: %+v", view)
	}

	h.addTest(t, &models.Test{ID: 2, Title: "Premium", IsPublished: true, IsPremium: true})
	if _, err := svc.GetForTaking(context.Background(), h.free.ID, 2); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestSetFlags(t *testing.T) {
	h := newHarness(t)
	svc := NewTestService(h.store, h.store)
	premium := true

	test, err := svc.SetFlags(context.Background(), testTwoQuestions, nil, &premium)
	if err != nil {
		t.Fatal(err)
	}
	if !test.IsPremium || !test.IsPublished {
		t.Errorf("Expected premium and still published, got premium=%v published=%v", test.IsPremium, test.IsPublished)
	}
	if _, err := svc.SetFlags(context.Background(), 999, nil, &premium); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("Expected ErrTestNotFound, got %v", err)
	}
}
