package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

const maxCSVOptions = 6

var csvHeader = []string{"question", "points", "explanation", "option1", "option2", "option3", "option4", "option5", "option6", "correct"}

// ExportTest godoc
// @Summary      Export a test
// @Description  Full definition with correct answers, as JSON (default) or CSV. The JSON form is accepted by import.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Test ID"
// @Param        format query string false "json or csv"
// @Success      200 {object} services.CreateTestInput
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/v1/admin/tests/{id}/export [get]
func (h *AdminHandler) ExportTest(c *gin.Context) {
	testID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), testID)
	if err != nil {
		respondError(c, err)
		return
	}

	data := exportInput(test)
	filename := strings.ReplaceAll(test.Title, " ", "_")

	if c.DefaultQuery("format", "json") == "csv" {
		rows := make([][]string, 0, len(data.Questions)+1)
		rows = append(rows, csvHeader)
		for i, q := range data.Questions {
			row, err := csvRow(q)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: fmt.Sprintf("question %d: %v, export as JSON instead", i+1, err)})
				return
			}
			rows = append(rows, row)
		}

		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
		w := csv.NewWriter(c.Writer)
		if err := w.WriteAll(rows); err != nil {
			log.Printf("export test %d: %v", testID, err)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", filename))
	c.JSON(http.StatusOK, data)
}

// ImportTest godoc
// @Summary      Import a test
// @Description  Create a new unpublished test from an exported JSON file or a CSV question sheet
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "JSON or CSV file"
// @Param        title formData string false "Title, required for CSV"
// @Success      201 {object} services.TestView
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/admin/tests/import [post]
func (h *AdminHandler) ImportTest(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file required"})
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read file"})
		return
	}

	var in services.CreateTestInput
	if strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		in, err = parseTestCSV(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		in.PassingScore = 70
	} else if err := json.Unmarshal(body, &in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if title := strings.TrimSpace(c.PostForm("title")); title != "" {
		in.Title = title
	}
	in.IsPublished = false

	test, err := h.testService.CreateTest(c.Request.Context(), c.GetUint("user_id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.NewTestView(test))
}

func exportInput(test *models.Test) services.CreateTestInput {
	data := services.CreateTestInput{
		CategoryID:       test.CategoryID,
		Title:            test.Title,
		Description:      test.Description,
		IsPublished:      test.IsPublished,
		IsPremium:        test.IsPremium,
		PassingScore:     test.PassingScore,
		TimeLimitMinutes: test.TimeLimitMinutes,
	}
	for _, q := range test.Questions {
		qi := services.QuestionInput{Text: q.Text, Points: q.Points, Explanation: q.Explanation}
		for _, o := range q.Options {
			qi.Options = append(qi.Options, services.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		data.Questions = append(data.Questions, qi)
	}
	return data
}

// csvRow lists correct options as 1-based positions joined by ';'. Questions
// with more options than the format has columns cannot be exported.
func csvRow(q services.QuestionInput) ([]string, error) {
	if len(q.Options) > maxCSVOptions {
		return nil, fmt.Errorf("%d options do not fit the %d CSV option columns", len(q.Options), maxCSVOptions)
	}
	row := make([]string, len(csvHeader))
	row[0] = q.Text
	row[1] = strconv.Itoa(q.Points)
	row[2] = q.Explanation
	var correct []string
	for i, o := range q.Options {
		row[3+i] = o.Text
		if o.IsCorrect {
			correct = append(correct, strconv.Itoa(i+1))
		}
	}
	row[len(row)-1] = strings.Join(correct, ";")
	return row, nil
}

func parseTestCSV(data []byte) (services.CreateTestInput, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return services.CreateTestInput{}, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) < 2 {
		return services.CreateTestInput{}, fmt.Errorf("CSV must have header + at least 1 row")
	}

	var in services.CreateTestInput
	for n, row := range records[1:] {
		if len(row) < len(csvHeader) {
			return services.CreateTestInput{}, fmt.Errorf("row %d: expected %d columns, got %d", n+2, len(csvHeader), len(row))
		}
		text := strings.TrimSpace(row[0])
		if text == "" {
			continue
		}

		points := 1
		if p := strings.TrimSpace(row[1]); p != "" {
			if points, err = strconv.Atoi(p); err != nil {
				return services.CreateTestInput{}, fmt.Errorf("row %d: invalid points %q", n+2, p)
			}
		}

		correct := make(map[int]bool)
		for _, part := range strings.Split(row[len(csvHeader)-1], ";") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			idx, err := strconv.Atoi(part)
			if err != nil {
				return services.CreateTestInput{}, fmt.Errorf("row %d: invalid correct option %q", n+2, part)
			}
			correct[idx] = true
		}

		qi := services.QuestionInput{Text: text, Points: points, Explanation: strings.TrimSpace(row[2])}
		for i := 0; i < maxCSVOptions; i++ {
			opt := strings.TrimSpace(row[3+i])
			if opt == "" {
				continue
			}
			qi.Options = append(qi.Options, services.OptionInput{Text: opt, IsCorrect: correct[i+1]})
		}
		in.Questions = append(in.Questions, qi)
	}
	return in, nil
}
