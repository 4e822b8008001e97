package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
	"github.com/josh-kwaku/account-ledger/internal/service/transaction"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type transactionGateway interface {
	Use(ctx context.Context, req transaction.UseRequest) (*domain.Transaction, error)
	Cancel(ctx context.Context, req transaction.CancelRequest) (*domain.Transaction, error)
}

type transactionReader interface {
	Select(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	History(ctx context.Context, number string, limit, offset int) ([]domain.Transaction, int, error)
}

type TransactionHandler struct {
	gateway transactionGateway
	reader  transactionReader
}

func NewTransactionHandler(gateway transactionGateway, reader transactionReader) *TransactionHandler {
	return &TransactionHandler{gateway: gateway, reader: reader}
}

// Amount range checks are left to the domain so that out-of-range attempts
// still produce a FAILED ledger entry.
type useRequest struct {
	UserID        int64  `json:"user_id" validate:"gt=0"`
	AccountNumber string `json:"account_number" validate:"required,max=20"`
	Amount        int64  `json:"amount" validate:"gt=0"`
}

type cancelRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
	AccountNumber string `json:"account_number" validate:"required,max=20"`
	Amount        int64  `json:"amount" validate:"gt=0"`
}

type transactionDTO struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountNumber string    `json:"account_number"`
	Kind          string    `json:"kind"`
	Outcome       string    `json:"outcome"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		TransactionID: t.ID,
		AccountNumber: t.AccountNumber,
		Kind:          string(t.Kind),
		Outcome:       string(t.Outcome),
		Amount:        t.Amount,
		CreatedAt:     t.CreatedAt,
	}
}

type historyDTO struct {
	Transactions []transactionDTO `json:"transactions"`
	Total        int              `json:"total"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

func (h *TransactionHandler) Use(w http.ResponseWriter, r *http.Request) {
	var req useRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := logging.With(r.Context(), "account_number", req.AccountNumber)
	t, err := h.gateway.Use(ctx, transaction.UseRequest{
		UserID:        req.UserID,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("use failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := logging.With(r.Context(), "account_number", req.AccountNumber)
	t, err := h.gateway.Cancel(ctx, transaction.CancelRequest{
		TransactionID: uuid.MustParse(req.TransactionID),
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("cancel failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(pathParam(r, "transactionId"))
	if err != nil {
		RespondAppError(w, fromDomain(domain.ErrTransactionNotFound), nil)
		return
	}

	t, err := h.reader.Select(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	number := pathParam(r, "accountNumber")

	limit, fe := queryInt(r, "limit", defaultHistoryLimit, maxHistoryLimit)
	if fe != nil {
		RespondValidationError(w, []FieldError{*fe})
		return
	}
	offset, fe := queryInt(r, "offset", 0, 0)
	if fe != nil {
		RespondValidationError(w, []FieldError{*fe})
		return
	}

	entries, total, err := h.reader.History(r.Context(), number, limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Warn("history lookup failed", "account_number", number, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(entries))
	for i := range entries {
		dtos[i] = toTransactionDTO(&entries[i])
	}
	RespondSuccess(w, http.StatusOK, historyDTO{Transactions: dtos, Total: total, Limit: limit, Offset: offset})
}
