package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashplan/internal/model"
	"cashplan/internal/repository"
	"cashplan/internal/service"
)

type apiEnv struct {
	handler   http.Handler
	recurring *service.RecurringService
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	recurringRepo := repository.NewRecurringRepository(db)

	ledger := service.NewLedgerService(db, txRepo, accountRepo)
	recurring := service.NewRecurringService(db, recurringRepo, txRepo, ledger, zerolog.Nop())

	server := NewServer(userRepo, accountRepo, categoryRepo, ledger, recurring, zerolog.Nop())
	return &apiEnv{handler: server.Handler(), recurring: recurring}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-API-Token", token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (e *apiEnv) registerUser(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/users", "", map[string]any{"email": email, "name": "Test"})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[struct {
		APIToken string `json:"apiToken"`
	}](t, rec)
	require.NotEmpty(t, resp.APIToken)
	return resp.APIToken
}

func (e *apiEnv) createAccount(t *testing.T, token string) uint {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/accounts", token, map[string]any{"name": "Checking", "balance": "1000"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[model.Account](t, rec).ID
}

func TestHealthzIsOpen(t *testing.T) {
	env := newAPIEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/api/recurring", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/recurring", "no-such-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndMe(t *testing.T) {
	env := newAPIEnv(t)
	token := env.registerUser(t, "me@example.com")

	rec := env.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[model.User](t, rec)
	assert.Equal(t, "me@example.com", user.Email)
}

func TestRecurringLifecycleOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	env.recurring.SetClock(func() time.Time {
		return time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	})
	token := env.registerUser(t, "lifecycle@example.com")
	accountID := env.createAccount(t, token)

	rec := env.do(t, http.MethodPost, "/api/recurring", token, map[string]any{
		"accountId":   accountID,
		"description": "Rent",
		"amount":      "1200",
		"type":        "expense",
		"frequency":   "monthly",
		"startDate":   "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.RecurringTransaction](t, rec)
	require.NotNil(t, created.NextExecutionDate)
	assert.Equal(t, "2024-02-01", created.NextExecutionDate.Format("2006-01-02"))

	base := fmt.Sprintf("/api/recurring/%d", created.ID)

	rec = env.do(t, http.MethodPost, base+"/execute", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	tx := decode[model.Transaction](t, rec)
	assert.Equal(t, created.ID, *tx.RecurringTransactionID)

	// Same-day re-execution violates the duplicate guard.
	rec = env.do(t, http.MethodPost, base+"/execute", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Force pushes it through anyway.
	rec = env.do(t, http.MethodPost, base+"/execute", token, map[string]any{"force": true})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]model.Transaction](t, rec)
	assert.Len(t, history, 2)

	rec = env.do(t, http.MethodPost, base+"/pause", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paused := decode[model.RecurringTransaction](t, rec)
	assert.Equal(t, model.RecurringStatusPaused, paused.Status)

	rec = env.do(t, http.MethodPost, base+"/resume", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resumed := decode[model.RecurringTransaction](t, rec)
	assert.Equal(t, model.RecurringStatusActive, resumed.Status)

	rec = env.do(t, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForeignRecurringIsNotFound(t *testing.T) {
	env := newAPIEnv(t)
	ownerToken := env.registerUser(t, "owner@example.com")
	strangerToken := env.registerUser(t, "stranger@example.com")
	accountID := env.createAccount(t, ownerToken)

	rec := env.do(t, http.MethodPost, "/api/recurring", ownerToken, map[string]any{
		"accountId":   accountID,
		"description": "Rent",
		"amount":      "1200",
		"type":        "expense",
		"frequency":   "monthly",
		"startDate":   "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.RecurringTransaction](t, rec)

	base := fmt.Sprintf("/api/recurring/%d", created.ID)
	for _, probe := range []struct {
		method, path string
	}{
		{http.MethodGet, base},
		{http.MethodDelete, base},
		{http.MethodPost, base + "/pause"},
		{http.MethodPost, base + "/execute"},
		{http.MethodGet, base + "/history"},
	} {
		rec := env.do(t, probe.method, probe.path, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", probe.method, probe.path)
	}
}

func TestCreateRecurringValidation(t *testing.T) {
	env := newAPIEnv(t)
	token := env.registerUser(t, "validation@example.com")
	accountID := env.createAccount(t, token)

	rec := env.do(t, http.MethodPost, "/api/recurring", token, map[string]any{
		"accountId":   accountID,
		"description": "Bad frequency",
		"amount":      "10",
		"type":        "expense",
		"frequency":   "biweekly",
		"startDate":   "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/recurring", token, map[string]any{
		"accountId":   accountID,
		"description": "Bad date",
		"amount":      "10",
		"type":        "expense",
		"frequency":   "monthly",
		"startDate":   "01.01.2024",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpcomingDaysBounds(t *testing.T) {
	env := newAPIEnv(t)
	token := env.registerUser(t, "upcoming@example.com")

	rec := env.do(t, http.MethodGet, "/api/recurring/upcoming?days=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/recurring/upcoming?days=400", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/recurring/upcoming", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
