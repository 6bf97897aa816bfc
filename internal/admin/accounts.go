package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teralab/backoffice/internal/db"
	"github.com/teralab/backoffice/internal/model"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// accountResponse is the API view of an account; the password hash
// never leaves the server.
type accountResponse struct {
	Name      string    `json:"name"`
	Coins     int64     `json:"coins"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(a model.Account) accountResponse {
	return accountResponse{Name: a.Name, Coins: a.Coins, Banned: a.Banned, CreatedAt: a.CreatedAt}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.store.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing accounts failed")
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := db.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating account failed")
		return
	}
	if err := s.store.CreateAccount(r.Context(), req.Name, hash); err != nil {
		if errors.Is(err, db.ErrAccountExists) {
			respondError(w, http.StatusConflict, "account already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "creating account failed")
		return
	}

	acc, err := s.store.GetAccount(r.Context(), req.Name)
	if err != nil || acc == nil {
		respondError(w, http.StatusInternalServerError, "creating account failed")
		return
	}
	respondJSON(w, http.StatusCreated, toAccountResponse(*acc))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(*acc))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}

	var req struct {
		Coins  *int64 `json:"coins"`
		Banned *bool  `json:"banned"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	coins := acc.Coins
	if req.Coins != nil {
		coins = *req.Coins
	}
	banned := acc.Banned
	if req.Banned != nil {
		banned = *req.Banned
	}
	if coins < 0 {
		respondError(w, http.StatusBadRequest, "coins must not be negative")
		return
	}

	if err := s.store.UpdateAccount(r.Context(), acc.Name, coins, banned); err != nil {
		respondError(w, http.StatusInternalServerError, "updating account failed")
		return
	}

	acc.Coins = coins
	acc.Banned = banned
	respondJSON(w, http.StatusOK, toAccountResponse(*acc))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteAccount(r.Context(), acc.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "deleting account failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	chars, err := s.store.ListCharacters(r.Context(), acc.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing characters failed")
		return
	}
	if chars == nil {
		chars = []model.Character{}
	}
	respondJSON(w, http.StatusOK, chars)
}

func (s *Server) handleRestoreCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid character id")
		return
	}
	if err := s.store.RestoreCharacter(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "restoring character failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookupAccount resolves the {name} route param; a missing account has
// already been answered with 404 when ok is false.
func (s *Server) lookupAccount(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	name := chi.URLParam(r, "name")
	acc, err := s.store.GetAccount(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "looking up account failed")
		return nil, false
	}
	if acc == nil {
		respondError(w, http.StatusNotFound, "account not found")
		return nil, false
	}
	return acc, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
