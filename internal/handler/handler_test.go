package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshkumar/credit-ledger/internal/models"
	"github.com/riteshkumar/credit-ledger/internal/repository"
	"github.com/riteshkumar/credit-ledger/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountRepo := repository.NewAccountRepository()
	auditRepo := repository.NewMemoryAuditRepository()

	accountService := service.NewAccountService(accountRepo, auditRepo, service.AccountDefaults{CreditLimit: 1000, APR: 0.35}, logger)
	transactionService := service.NewTransactionService(accountRepo, auditRepo, logger)

	router := NewRouter(
		NewAccountHandler(accountService, logger),
		NewTransactionHandler(transactionService, logger),
		logger,
	)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends body as JSON, checks the status code and decodes into out.
func doJSON(t *testing.T, method, url string, body any, wantCode int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantCode, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func float(v float64) *float64 { return &v }

func TestHTTPFlow(t *testing.T) {
	ts := newTestServer(t)

	var account models.AccountResponse
	doJSON(t, http.MethodPost, ts.URL+"/accounts", models.CreateAccountRequest{CreditLimit: float(1000), APR: float(0.35)}, http.StatusCreated, &account)
	require.NotEmpty(t, account.ID)
	assert.Equal(t, 1000.0, account.AvailableCredit)

	base := ts.URL + "/accounts/" + account.ID

	var tx models.TransactionResponse
	doJSON(t, http.MethodPost, base+"/charges", models.TransactionRequest{Amount: 500, Day: 0}, http.StatusCreated, &tx)
	assert.True(t, tx.Accepted)
	doJSON(t, http.MethodPost, base+"/payments", models.TransactionRequest{Amount: 200, Day: 15}, http.StatusCreated, &tx)
	assert.Equal(t, 300.0, tx.OutstandingBalance)
	doJSON(t, http.MethodPost, base+"/charges", models.TransactionRequest{Amount: 100, Day: 25}, http.StatusCreated, nil)

	var declined models.TransactionResponse
	doJSON(t, http.MethodPost, base+"/charges", models.TransactionRequest{Amount: 600.01, Day: 26}, http.StatusUnprocessableEntity, &declined)
	assert.False(t, declined.Accepted)
	assert.Equal(t, 400.0, declined.OutstandingBalance)

	var early models.BalanceResponse
	doJSON(t, http.MethodGet, base+"/balance?day=29", nil, http.StatusOK, &early)
	assert.Equal(t, 400.0, early.Balance)
	assert.False(t, early.InterestApplied)

	var bal models.BalanceResponse
	doJSON(t, http.MethodGet, base+"/balance?day=30", nil, http.StatusOK, &bal)
	assert.True(t, bal.InterestApplied)
	assert.InDelta(t, 411.99, bal.Balance, 0.01)

	var interest models.InterestResponse
	doJSON(t, http.MethodGet, base+"/interest?day=30", nil, http.StatusOK, &interest)
	assert.InDelta(t, 11.99, interest.AccruedInterest, 0.01)

	var txs []models.TransactionEntry
	doJSON(t, http.MethodGet, base+"/transactions", nil, http.StatusOK, &txs)
	assert.Equal(t, []models.TransactionEntry{{Day: 0, Amount: 500}, {Day: 15, Amount: -200}, {Day: 25, Amount: 100}}, txs)

	var snaps []models.BalanceSnapshot
	doJSON(t, http.MethodGet, base+"/balances", nil, http.StatusOK, &snaps)
	assert.Equal(t, []models.BalanceSnapshot{{Day: 0, Balance: 500}, {Day: 15, Balance: 300}, {Day: 25, Balance: 400}}, snaps)

	resp, err := http.Get(base + "/statement?day=30")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Outstanding Balance at day 30: $411.99")
	assert.Contains(t, string(body), "--Balance History--")
}

func TestHTTPErrors(t *testing.T) {
	ts := newTestServer(t)

	var account models.AccountResponse
	doJSON(t, http.MethodPost, ts.URL+"/accounts", models.CreateAccountRequest{}, http.StatusCreated, &account)
	assert.Equal(t, 1000.0, account.CreditLimit)
	base := ts.URL + "/accounts/" + account.ID

	var errResp models.ErrorResponse
	doJSON(t, http.MethodPost, ts.URL+"/accounts", models.CreateAccountRequest{CreditLimit: float(10), APR: float(2)}, http.StatusBadRequest, &errResp)
	assert.Equal(t, "validation error", errResp.Error)

	// an explicit zero limit is not swapped for the default
	doJSON(t, http.MethodPost, ts.URL+"/accounts", map[string]float64{"credit_limit": 0, "apr": 0.9}, http.StatusBadRequest, nil)

	var partial models.AccountResponse
	doJSON(t, http.MethodPost, ts.URL+"/accounts", map[string]float64{"apr": 0.2}, http.StatusCreated, &partial)
	assert.Equal(t, 1000.0, partial.CreditLimit)
	assert.Equal(t, 0.2, partial.APR)

	doJSON(t, http.MethodGet, ts.URL+"/accounts/unknown", nil, http.StatusNotFound, nil)
	doJSON(t, http.MethodPost, base+"/charges", models.TransactionRequest{Amount: 0, Day: 1}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, base+"/payments", models.TransactionRequest{Amount: 5, Day: -1}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, base+"/interest?day=40", nil, http.StatusConflict, nil)
	doJSON(t, http.MethodGet, base+"/balance", nil, http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, base+"/balance?day=abc", nil, http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, base+"/balance?day=-3", nil, http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, ts.URL+"/accounts/"+account.ID, nil, http.StatusOK, nil)
	doJSON(t, http.MethodDelete, base, nil, http.StatusMethodNotAllowed, nil)

	req, err := http.NewRequest(http.MethodPost, base+"/charges", bytes.NewBufferString("{bad"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var out map[string]string
	doJSON(t, http.MethodGet, ts.URL+"/health", nil, http.StatusOK, &out)
	assert.Equal(t, "healthy", out["status"])
}
