package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"cashplan/internal/repository"
	"cashplan/internal/service"
)

// Server holds the handler dependencies and builds the route table.
type Server struct {
	userRepo     *repository.UserRepository
	accountRepo  *repository.AccountRepository
	categoryRepo *repository.CategoryRepository
	ledger       *service.LedgerService
	recurring    *service.RecurringService
	log          zerolog.Logger
}

func NewServer(
	userRepo *repository.UserRepository,
	accountRepo *repository.AccountRepository,
	categoryRepo *repository.CategoryRepository,
	ledger *service.LedgerService,
	recurring *service.RecurringService,
	log zerolog.Logger,
) *Server {
	return &Server{
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
		recurring:    recurring,
		log:          log,
	}
}

// Handler assembles the mux with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/users", s.handleRegister)

	authed := http.NewServeMux()
	authed.HandleFunc("GET /api/me", s.handleMe)

	authed.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	authed.HandleFunc("GET /api/accounts", s.handleListAccounts)
	authed.HandleFunc("POST /api/categories", s.handleCreateCategory)
	authed.HandleFunc("GET /api/categories", s.handleListCategories)

	authed.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	authed.HandleFunc("GET /api/transactions", s.handleListTransactions)

	authed.HandleFunc("POST /api/recurring", s.handleCreateRecurring)
	authed.HandleFunc("GET /api/recurring", s.handleListRecurring)
	authed.HandleFunc("GET /api/recurring/upcoming", s.handleUpcoming)
	authed.HandleFunc("GET /api/recurring/{id}", s.handleGetRecurring)
	authed.HandleFunc("PUT /api/recurring/{id}", s.handleUpdateRecurring)
	authed.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	authed.HandleFunc("POST /api/recurring/{id}/pause", s.handlePauseRecurring)
	authed.HandleFunc("POST /api/recurring/{id}/resume", s.handleResumeRecurring)
	authed.HandleFunc("POST /api/recurring/{id}/execute", s.handleExecuteRecurring)
	authed.HandleFunc("GET /api/recurring/{id}/history", s.handleRecurringHistory)

	mux.Handle("/api/", Auth(s.userRepo)(authed))

	var handler http.Handler = mux
	handler = CORS(handler)
	handler = Logger(s.log)(handler)
	handler = RequestID(handler)
	return handler
}
