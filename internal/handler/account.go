package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
)

type accountService interface {
	CreateAccount(ctx context.Context, userID int64, initialBalance int64) (*domain.Account, error)
	CloseAccount(ctx context.Context, userID int64, number string) (*domain.Account, error)
	GetUserAccounts(ctx context.Context, userID int64) ([]domain.Account, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	UserID         int64 `json:"user_id" validate:"gt=0"`
	InitialBalance int64 `json:"initial_balance" validate:"min=100"`
}

type closeAccountRequest struct {
	UserID        int64  `json:"user_id" validate:"gt=0"`
	AccountNumber string `json:"account_number" validate:"required,max=20"`
}

type accountDTO struct {
	UserID         int64      `json:"user_id"`
	AccountNumber  string     `json:"account_number"`
	Status         string     `json:"status"`
	Balance        int64      `json:"balance"`
	RegisteredAt   time.Time  `json:"registered_at"`
	UnregisteredAt *time.Time `json:"unregistered_at,omitempty"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		UserID:         a.UserID,
		AccountNumber:  a.Number,
		Status:         string(a.Status),
		Balance:        a.Balance,
		RegisteredAt:   a.RegisteredAt,
		UnregisteredAt: a.UnregisteredAt,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.UserID, req.InitialBalance)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "user_id", req.UserID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req closeAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.CloseAccount(r.Context(), req.UserID, req.AccountNumber)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to close account", "account_number", req.AccountNumber, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		RespondValidationError(w, []FieldError{{Field: "user_id", Message: "must be a positive integer"}})
		return
	}

	accounts, err := h.accounts.GetUserAccounts(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "user_id", userID, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
