package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teralab/backoffice/internal/config"
	"github.com/teralab/backoffice/internal/db"
	"github.com/teralab/backoffice/internal/model"
)

// memStore is an in-memory AccountStore for handler tests.
type memStore struct {
	accounts   map[string]model.Account
	characters map[string][]model.Character
	benefits   map[string][]model.BenefitGrant
}

func newMemStore() *memStore {
	return &memStore{
		accounts:   make(map[string]model.Account),
		characters: make(map[string][]model.Character),
		benefits:   make(map[string][]model.BenefitGrant),
	}
}

func (m *memStore) ListAccounts(_ context.Context, limit, offset int) ([]model.Account, error) {
	var out []model.Account
	for _, a := range m.accounts {
		out = append(out, a)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetAccount(_ context.Context, name string) (*model.Account, error) {
	a, ok := m.accounts[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memStore) CreateAccount(_ context.Context, name, passwordHash string) error {
	name = strings.ToLower(name)
	if _, ok := m.accounts[name]; ok {
		return db.ErrAccountExists
	}
	m.accounts[name] = model.Account{Name: name, PasswordHash: passwordHash, CreatedAt: time.Now()}
	return nil
}

func (m *memStore) UpdateAccount(_ context.Context, name string, coins int64, banned bool) error {
	name = strings.ToLower(name)
	a := m.accounts[name]
	a.Coins = coins
	a.Banned = banned
	m.accounts[name] = a
	return nil
}

func (m *memStore) DeleteAccount(_ context.Context, name string) error {
	delete(m.accounts, strings.ToLower(name))
	return nil
}

func (m *memStore) ListCharacters(_ context.Context, accountName string) ([]model.Character, error) {
	return m.characters[strings.ToLower(accountName)], nil
}

func (m *memStore) RestoreCharacter(_ context.Context, id int64) error {
	for acc, chars := range m.characters {
		for i := range chars {
			if chars[i].ID == id {
				chars[i].Deleted = false
			}
		}
		m.characters[acc] = chars
	}
	return nil
}

func (m *memStore) ListBenefits(_ context.Context, accountName string) ([]model.BenefitGrant, error) {
	return m.benefits[strings.ToLower(accountName)], nil
}

func (m *memStore) GrantBenefit(_ context.Context, g model.BenefitGrant) error {
	name := strings.ToLower(g.AccountName)
	for i, existing := range m.benefits[name] {
		if existing.BenefitID == g.BenefitID {
			m.benefits[name][i] = g
			return nil
		}
	}
	m.benefits[name] = append(m.benefits[name], g)
	return nil
}

func (m *memStore) RevokeBenefit(_ context.Context, accountName string, benefitID int32) error {
	name := strings.ToLower(accountName)
	grants := m.benefits[name]
	for i, g := range grants {
		if g.BenefitID == benefitID {
			m.benefits[name] = append(grants[:i], grants[i+1:]...)
			return nil
		}
	}
	return nil
}

func testServer(store AccountStore) *Server {
	catalog := NewBenefitCatalog(map[string][]config.BenefitEntry{
		"eng": {{ID: 333, Name: "Club", Description: "Subscription"}},
		"rus": {{ID: 433, Name: "Клуб", Description: "Подписка"}},
	})
	return New(store, catalog, []string{"http://localhost:*"})
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, testServer(newMemStore()), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCreateAccount(t *testing.T) {
	s := testServer(newMemStore())

	rec := doRequest(t, s, http.MethodPost, "/api/accounts", `{"name":"Alice","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Name)
	assert.False(t, created.Banned)
	// The password hash must never appear in a response.
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doRequest(t, s, http.MethodPost, "/api/accounts", `{"name":"alice","password":"hunter22"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAccount_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"password":"hunter22"}`},
		{name: "short password", body: `{"name":"bob","password":"abc"}`},
		{name: "bad json", body: `{`},
	}

	s := testServer(newMemStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/accounts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListAccounts(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice", Coins: 10}
	s := testServer(store)

	rec := doRequest(t, s, http.MethodGet, "/api/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var accounts []accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "alice", accounts[0].Name)
}

func TestGetAccount_NotFound(t *testing.T) {
	rec := doRequest(t, testServer(newMemStore()), http.MethodGet, "/api/accounts/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAccount(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice", Coins: 10}
	s := testServer(store)

	rec := doRequest(t, s, http.MethodPut, "/api/accounts/alice", `{"coins":250,"banned":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, int64(250), updated.Coins)
	assert.True(t, updated.Banned)

	// Partial update keeps the untouched field.
	rec = doRequest(t, s, http.MethodPut, "/api/accounts/alice", `{"banned":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, int64(250), updated.Coins)
	assert.False(t, updated.Banned)
}

func TestDeleteAccount(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice"}
	s := testServer(store)

	rec := doRequest(t, s, http.MethodDelete, "/api/accounts/alice", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/accounts/alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCharacters(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice"}
	store.characters["alice"] = []model.Character{
		{ID: 1, AccountName: "alice", Name: "Kael", Level: 58, Class: "lancer"},
	}
	s := testServer(store)

	rec := doRequest(t, s, http.MethodGet, "/api/accounts/alice/characters", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var chars []model.Character
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chars))
	require.Len(t, chars, 1)
	assert.Equal(t, "Kael", chars[0].Name)
}

func TestBenefits(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice"}
	s := testServer(store)

	// Unknown benefit id is rejected against the catalog.
	rec := doRequest(t, s, http.MethodPut, "/api/accounts/alice/benefits/999", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/api/accounts/alice/benefits/333", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/accounts/alice/benefits", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var grants []benefitGrantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grants))
	require.Len(t, grants, 1)
	assert.Equal(t, int32(333), grants[0].BenefitID)

	rec = doRequest(t, s, http.MethodDelete, "/api/accounts/alice/benefits/333", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/accounts/alice/benefits", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grants))
	assert.Empty(t, grants)
}

func TestGrantBenefit_ChunkedBody(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice"}
	s := testServer(store)

	// io.MultiReader hides the body length, so the request carries
	// ContentLength -1 the way a chunked upload does; the expiry must
	// still be honored.
	body := `{"expires_at":"2026-09-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/api/accounts/alice/benefits/333",
		io.MultiReader(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, int64(-1), req.ContentLength)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	grants, err := store.ListBenefits(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.NotNil(t, grants[0].ExpiresAt)
	assert.True(t, grants[0].ExpiresAt.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGrantBenefit_BadBody(t *testing.T) {
	store := newMemStore()
	store.accounts["alice"] = model.Account{Name: "alice"}
	s := testServer(store)

	rec := doRequest(t, s, http.MethodPut, "/api/accounts/alice/benefits/333", `{"expires_at":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBenefitCatalogEndpoint(t *testing.T) {
	s := testServer(newMemStore())

	for locale, wantID := range map[string]int32{"eng": 333, "rus": 433} {
		rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/benefits?locale=%s", locale), "")
		require.Equal(t, http.StatusOK, rec.Code)
		var benefits []Benefit
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &benefits))
		require.Len(t, benefits, 1)
		assert.Equal(t, wantID, benefits[0].ID)
	}

	rec := doRequest(t, s, http.MethodGet, "/api/benefits?locale=unknown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
