// Package chat answers free-form questions about a couple's finances. Every
// question is grounded: the current report is rebuilt and rendered into the
// system prompt, so the model only ever sees real aggregated numbers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bilancio/internal/insight"
	"bilancio/internal/llm"
	"bilancio/internal/services"
)

const maxQuestionLength = 2000

var (
	ErrEmptyQuestion   = errors.New("empty question")
	ErrQuestionTooLong = fmt.Errorf("question too long (max %d characters)", maxQuestionLength)
)

type Service struct {
	model   llm.ChatModel
	reports *services.ReportService
}

func NewService(model llm.ChatModel, reports *services.ReportService) *Service {
	return &Service{model: model, reports: reports}
}

// Ask rebuilds the couple's current-month report, renders it into the system
// prompt, and asks the model the user's question against that context.
func (s *Service) Ask(ctx context.Context, coupleID string, profile insight.Profile, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if len(question) > maxQuestionLength {
		return "", ErrQuestionTooLong
	}

	report, err := s.reports.Generate(ctx, coupleID, string(insight.Month), time.Now())
	if err != nil {
		return "", fmt.Errorf("build chat context: %w", err)
	}

	system := insight.BuildPrompt(profile, report.Snapshot, report.Goals, report.Insights)

	answer, err := s.model.Complete(ctx, system, question)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	slog.InfoContext(ctx, "Answered chat question",
		"couple_id", coupleID,
		"question_len", len(question),
		"answer_len", len(answer))

	return answer, nil
}
