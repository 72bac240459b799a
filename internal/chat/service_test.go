package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/insight"
	"bilancio/internal/services"
	"bilancio/internal/store/memory"
)

type cannedModel struct {
	system string
	user   string
	reply  string
	err    error
}

func (m *cannedModel) Complete(_ context.Context, system, user string) (string, error) {
	m.system = system
	m.user = user
	return m.reply, m.err
}

func newTestService(t *testing.T, model *cannedModel) *Service {
	t.Helper()
	mem := memory.New()

	_, err := mem.CreateTransaction(context.Background(), core.Transaction{
		CoupleID:    "couple-1",
		CategoryID:  4,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 4500},
		Date:        time.Now(),
		Description: "groceries",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	return NewService(model, services.NewReportService(mem, mem, mem))
}

func TestService_AskGroundsPromptInReport(t *testing.T) {
	model := &cannedModel{reply: "You spent 45.00 on groceries this month."}
	svc := newTestService(t, model)

	profile := insight.Profile{Name: "Ada", PartnerName: "Sam", Currency: "EUR"}
	answer, err := svc.Ask(context.Background(), "couple-1", profile, "What did we spend on food?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != model.reply {
		t.Errorf("answer = %q, want the model reply", answer)
	}

	if model.user != "What did we spend on food?" {
		t.Errorf("user message = %q", model.user)
	}
	for _, want := range []string{"Ada", "Sam", "Groceries", "45.00"} {
		if !strings.Contains(model.system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, model.system)
		}
	}
}

func TestService_AskRejectsBadQuestions(t *testing.T) {
	svc := newTestService(t, &cannedModel{reply: "ok"})
	profile := insight.Profile{Name: "Ada"}

	if _, err := svc.Ask(context.Background(), "couple-1", profile, "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("blank question err = %v, want ErrEmptyQuestion", err)
	}

	long := strings.Repeat("a", maxQuestionLength+1)
	if _, err := svc.Ask(context.Background(), "couple-1", profile, long); !errors.Is(err, ErrQuestionTooLong) {
		t.Errorf("long question err = %v, want ErrQuestionTooLong", err)
	}
}

func TestService_AskPropagatesModelError(t *testing.T) {
	model := &cannedModel{err: errors.New("rate limited")}
	svc := newTestService(t, model)

	_, err := svc.Ask(context.Background(), "couple-1", insight.Profile{Name: "Ada"}, "hi")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v, want wrapped model error", err)
	}
}
