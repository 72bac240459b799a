package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/insight"
)

type transactionDTO struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"categoryId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amountCents"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		Type:        string(tx.Type),
		Amount:      formatDecimal(tx.Amount.Cents),
		AmountCents: tx.Amount.Cents,
		Date:        tx.Date.Format("2006-01-02"),
		Description: tx.Description,
		Notes:       tx.Notes,
	}
}

type createTransactionRequest struct {
	CategoryID  int64  `json:"categoryId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

type categoryDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Type      string `json:"type"`
	IsDefault bool   `json:"isDefault"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.backend.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{
			ID:        c.ID,
			Name:      c.Name,
			Icon:      c.Icon,
			Color:     c.Color,
			Type:      string(c.Type),
			IsDefault: c.IsDefault,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	p := insight.ParsePeriod(r.URL.Query().Get("period"))
	rng := insight.Resolve(p, time.Now())

	txs, err := s.backend.ListTransactions(r.Context(), couple, rng.Start, rng.End)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":       p,
		"transactions": out,
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	date := time.Now()
	if strings.TrimSpace(req.Date) != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	tx := core.Transaction{
		CoupleID:    couple,
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: sanitizeInput(req.Description),
		Notes:       sanitizeInput(req.Notes),
	}

	id, err := s.transactions.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	tx.ID = id

	s.invalidateReports(r.Context(), couple)

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.transactions.DeleteTransaction(r.Context(), couple, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(r.Context(), couple)

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatDecimal renders cents as a plain decimal string, e.g. "12.34".
func formatDecimal(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	out := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + out
	}
	return out
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
