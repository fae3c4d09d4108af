package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/MikeGii/medunacy-sub000/internal/services"
)

func options(n int, correct ...int) []services.OptionInput {
	isCorrect := make(map[int]bool)
	for _, c := range correct {
		isCorrect[c] = true
	}
	out := make([]services.OptionInput, n)
	for i := range out {
		out[i] = services.OptionInput{Text: fmt.Sprintf("O%d", i+1), IsCorrect: isCorrect[i+1]}
	}
	return out
}

func TestCSVRow(t *testing.T) {
	testCases := []struct {
		name     string
		question services.QuestionInput
		expected []string
		wantErr  bool
	}{
		{
			name:     "two options",
			question: services.QuestionInput{Text: "Q", Points: 2, Explanation: "E", Options: options(2, 1)},
			expected: []string{"Q", "2", "E", "O1", "O2", "", "", "", "", "1"},
		},
		{
			name:     "six options, several correct",
			question: services.QuestionInput{Text: "Q", Points: 1, Options: options(6, 2, 6)},
			expected: []string{"Q", "1", "", "O1", "O2", "O3", "O4", "O5", "O6", "2;6"},
		},
		{
			name:     "seven options",
			question: services.QuestionInput{Text: "Q", Points: 1, Options: options(7, 7)},
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row, err := csvRow(tc.question)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got row %v", row)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !reflect.DeepEqual(row, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, row)
			}
		})
	}
}

func TestCSVRowsParseBack(t *testing.T) {
	q := services.QuestionInput{Text: "Dose?", Points: 3, Explanation: "Weight based", Options: options(6, 1, 6)}
	row, err := csvRow(q)
	if err != nil {
		t.Fatal(err)
	}

	sheet := strings.Join(csvHeader, ",") + "\n" + strings.Join(row, ",") + "\n"
	in, err := parseTestCSV([]byte(sheet))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(in.Questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(in.Questions))
	}
	if !reflect.DeepEqual(in.Questions[0], q) {
		t.Errorf("Expected %+v, got %+v", q, in.Questions[0])
	}
}
