package admin

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teralab/backoffice/internal/model"
)

type benefitGrantResponse struct {
	BenefitID int32      `json:"benefit_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *Server) handleBenefitCatalog(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "eng"
	}
	respondJSON(w, http.StatusOK, s.catalog.ForLocale(locale))
}

func (s *Server) handleListBenefits(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	grants, err := s.store.ListBenefits(r.Context(), acc.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing benefits failed")
		return
	}
	out := make([]benefitGrantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, benefitGrantResponse{BenefitID: g.BenefitID, ExpiresAt: g.ExpiresAt})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGrantBenefit(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	benefitID, ok2 := benefitIDParam(w, r)
	if !ok2 {
		return
	}
	if !s.catalog.Known(benefitID) {
		respondError(w, http.StatusUnprocessableEntity, "unknown benefit id")
		return
	}

	var req struct {
		ExpiresAt *time.Time `json:"expires_at"`
	}
	// An absent body means "no expiry"; ContentLength is unreliable for
	// chunked requests, so decode and treat EOF as empty.
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	grant := model.BenefitGrant{
		AccountName: acc.Name,
		BenefitID:   benefitID,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := s.store.GrantBenefit(r.Context(), grant); err != nil {
		respondError(w, http.StatusInternalServerError, "granting benefit failed")
		return
	}
	respondJSON(w, http.StatusOK, benefitGrantResponse{BenefitID: benefitID, ExpiresAt: req.ExpiresAt})
}

func (s *Server) handleRevokeBenefit(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	benefitID, ok2 := benefitIDParam(w, r)
	if !ok2 {
		return
	}
	if err := s.store.RevokeBenefit(r.Context(), acc.Name, benefitID); err != nil {
		respondError(w, http.StatusInternalServerError, "revoking benefit failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func benefitIDParam(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := chi.URLParam(r, "benefitID")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid benefit id")
		return 0, false
	}
	return int32(id), true
}
