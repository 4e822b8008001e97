package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
)

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type UserHandler struct {
	users userStore
}

func NewUserHandler(users userStore) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type userDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := &domain.User{Name: req.Name, CreatedAt: time.Now().UTC()}
	if err := h.users.Create(r.Context(), user); err != nil {
		logging.FromContext(r.Context()).Error("failed to create user", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, userDTO{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt})
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "userId"), 10, 64)
	if err != nil || id <= 0 {
		RespondAppError(w, fromDomain(domain.ErrUserNotFound), nil)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrUserNotFound
		}
		logging.FromContext(r.Context()).Warn("failed to get user", "user_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, userDTO{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt})
}
