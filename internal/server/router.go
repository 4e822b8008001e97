package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/josh-kwaku/account-ledger/internal/handler"
	"github.com/josh-kwaku/account-ledger/internal/middleware"
)

type Handlers struct {
	Transactions *handler.TransactionHandler
	Accounts     *handler.AccountHandler
	Users        *handler.UserHandler
	Health       *handler.HealthHandler
}

// requestTimeout bounds a whole request, which includes the lock wait and the
// processing delay spent inside the lock.
const requestTimeout = 60 * time.Second

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/health/live", h.Health.Liveness)
	r.Get("/health/ready", h.Health.Readiness)

	r.Post("/transaction/use", h.Transactions.Use)
	r.Post("/transaction/cancel", h.Transactions.Cancel)
	r.Get("/transactions/{transactionId}", h.Transactions.Get)

	r.Post("/users", h.Users.Create)
	r.Get("/users/{userId}", h.Users.GetByID)

	r.Post("/account", h.Accounts.Create)
	r.Patch("/account", h.Accounts.Close)
	r.Get("/accounts", h.Accounts.List)
	r.Get("/accounts/{accountNumber}/transactions", h.Transactions.History)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondAppError(w, handler.ErrResourceNotFound, nil)
	})
	return r
}
