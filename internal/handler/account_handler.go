package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/models"
	"github.com/riteshkumar/credit-ledger/internal/service"
	u "github.com/riteshkumar/credit-ledger/internal/utils"
)

type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

func NewAccountHandler(accountService service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts", h.CreateAccount).Methods(http.MethodPost)
	router.HandleFunc("/accounts/{id}", h.GetAccount).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/balance", h.GetBalance).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/interest", h.GetInterest).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/transactions", h.GetTransactions).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/balances", h.GetBalanceHistory).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/statement", h.GetStatement).Methods(http.MethodGet)
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid create account request", "error", err.Error())
		u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create account")
		return
	}

	u.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, h.logger, err, "get account")
		return
	}

	u.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]
	day, err := u.DayParam(r)
	if err != nil {
		handleServiceError(w, h.logger, err, "get balance")
		return
	}

	q, err := h.accountService.BalanceAt(r.Context(), accountID, day)
	if err != nil {
		handleServiceError(w, h.logger, err, "get balance")
		return
	}

	u.WriteJSON(w, http.StatusOK, models.BalanceResponse{
		AccountID:       accountID,
		Day:             q.Day,
		Balance:         q.Balance,
		AccruedInterest: q.Interest,
		InterestApplied: q.InterestApplied,
	})
}

func (h *AccountHandler) GetInterest(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]
	day, err := u.DayParam(r)
	if err != nil {
		handleServiceError(w, h.logger, err, "get interest")
		return
	}

	interest, err := h.accountService.AccruedInterest(r.Context(), accountID, day)
	if err != nil {
		handleServiceError(w, h.logger, err, "get interest")
		return
	}

	u.WriteJSON(w, http.StatusOK, models.InterestResponse{
		AccountID:       accountID,
		Day:             day,
		AccruedInterest: interest,
	})
}

func (h *AccountHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := h.accountService.TransactionHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, h.logger, err, "get transactions")
		return
	}

	out := make([]models.TransactionEntry, 0, len(history))
	for _, tx := range history {
		out = append(out, models.TransactionEntry{Day: tx.Day, Amount: tx.Amount})
	}
	u.WriteJSON(w, http.StatusOK, out)
}

func (h *AccountHandler) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.accountService.BalanceHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, h.logger, err, "get balance history")
		return
	}

	out := make([]models.BalanceSnapshot, 0, len(history))
	for _, s := range history {
		out = append(out, models.BalanceSnapshot{Day: s.Day, Balance: s.Balance})
	}
	u.WriteJSON(w, http.StatusOK, out)
}

// GetStatement serves the plain-text account report for the query day.
func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	day, err := u.DayParam(r)
	if err != nil {
		handleServiceError(w, h.logger, err, "get statement")
		return
	}

	var buf bytes.Buffer
	if err := h.accountService.Statement(r.Context(), mux.Vars(r)["id"], day, &buf); err != nil {
		handleServiceError(w, h.logger, err, "get statement")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func toAccountResponse(account *models.Account) models.AccountResponse {
	l := account.Ledger
	return models.AccountResponse{
		ID:                 account.ID,
		CreditLimit:        l.CreditLimit(),
		APR:                l.APR(),
		DailyRate:          l.DailyRate(),
		OutstandingBalance: l.OutstandingBalance(),
		AvailableCredit:    l.AvailableCredit(),
		LastTransactionDay: l.LastTransactionDay(),
	}
}

func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error, operation string) {
	switch {
	case errors.IsNotFound(err):
		u.WriteError(w, http.StatusNotFound, "account not found", "")
	case errors.IsAlreadyExists(err):
		u.WriteError(w, http.StatusConflict, "account already exists", "")
	case errors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	case errors.IsInvalidInput(err):
		u.WriteError(w, http.StatusBadRequest, "invalid input", err.Error())
	case errors.IsEmptyHistory(err):
		u.WriteError(w, http.StatusConflict, "no transaction history", "account has no transactions to accrue interest on")
	case errors.IsDeclined(err):
		u.WriteError(w, http.StatusUnprocessableEntity, "credit limit exceeded", err.Error())
	default:
		logger.Error("internal server error during "+operation, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}
