// Package admin exposes the back-office JSON API: account CRUD, benefit
// grants and character listings.
package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/teralab/backoffice/internal/model"
)

// AccountStore is the persistence surface of the admin API.
type AccountStore interface {
	ListAccounts(ctx context.Context, limit, offset int) ([]model.Account, error)
	GetAccount(ctx context.Context, name string) (*model.Account, error)
	CreateAccount(ctx context.Context, name, passwordHash string) error
	UpdateAccount(ctx context.Context, name string, coins int64, banned bool) error
	DeleteAccount(ctx context.Context, name string) error
	ListCharacters(ctx context.Context, accountName string) ([]model.Character, error)
	RestoreCharacter(ctx context.Context, id int64) error
	ListBenefits(ctx context.Context, accountName string) ([]model.BenefitGrant, error)
	GrantBenefit(ctx context.Context, g model.BenefitGrant) error
	RevokeBenefit(ctx context.Context, accountName string, benefitID int32) error
}

// Server holds the HTTP API dependencies.
type Server struct {
	store   AccountStore
	catalog *BenefitCatalog
	router  chi.Router
}

// New creates the admin API server.
func New(store AccountStore, catalog *BenefitCatalog, allowedOrigins []string) *Server {
	s := &Server{
		store:   store,
		catalog: catalog,
		router:  chi.NewRouter(),
	}

	s.setupMiddleware(allowedOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Accounts
		r.Get("/accounts", s.handleListAccounts)
		r.Post("/accounts", s.handleCreateAccount)
		r.Get("/accounts/{name}", s.handleGetAccount)
		r.Put("/accounts/{name}", s.handleUpdateAccount)
		r.Delete("/accounts/{name}", s.handleDeleteAccount)

		// Characters
		r.Get("/accounts/{name}/characters", s.handleListCharacters)
		r.Post("/characters/{id}/restore", s.handleRestoreCharacter)

		// Benefits
		r.Get("/accounts/{name}/benefits", s.handleListBenefits)
		r.Put("/accounts/{name}/benefits/{benefitID}", s.handleGrantBenefit)
		r.Delete("/accounts/{name}/benefits/{benefitID}", s.handleRevokeBenefit)
		r.Get("/benefits", s.handleBenefitCatalog)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
