package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/models"
	"github.com/riteshkumar/credit-ledger/internal/service"
	u "github.com/riteshkumar/credit-ledger/internal/utils"
)

type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

func NewTransactionHandler(transactionService service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts/{id}/charges", h.CreateCharge).Methods(http.MethodPost)
	router.HandleFunc("/accounts/{id}/payments", h.CreatePayment).Methods(http.MethodPost)
}

func (h *TransactionHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.TransactionKindCharge)
}

func (h *TransactionHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.TransactionKindPayment)
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request, kind string) {
	var req models.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid "+kind+" request", "error", err.Error())
		u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	accountID := mux.Vars(r)["id"]
	var (
		resp *models.TransactionResponse
		err  error
	)
	if kind == models.TransactionKindCharge {
		resp, err = h.transactionService.Charge(r.Context(), accountID, &req)
	} else {
		resp, err = h.transactionService.Pay(r.Context(), accountID, &req)
	}

	if err != nil {
		// a declined charge is a normal outcome, reported with accepted=false
		if errors.IsDeclined(err) && resp != nil {
			u.WriteJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		handleServiceError(w, h.logger, err, "create "+kind)
		return
	}

	u.WriteJSON(w, http.StatusCreated, resp)
}
