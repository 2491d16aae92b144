package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/ledger"
	"github.com/riteshkumar/credit-ledger/internal/models"
	"github.com/riteshkumar/credit-ledger/internal/repository"
)

type TransactionService interface {
	Charge(ctx context.Context, accountID string, req *models.TransactionRequest) (*models.TransactionResponse, error)
	Pay(ctx context.Context, accountID string, req *models.TransactionRequest) (*models.TransactionResponse, error)
}

type TransactionServiceImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditRepository
	logger      *slog.Logger
}

func NewTransactionService(accountRepo repository.AccountRepository, auditRepo repository.AuditRepository, logger *slog.Logger) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// Charge records a purchase against the account. A charge over the credit
// limit returns the declined response together with ErrLimitExceeded.
func (s *TransactionServiceImpl) Charge(ctx context.Context, accountID string, req *models.TransactionRequest) (*models.TransactionResponse, error) {
	return s.apply(ctx, accountID, req, models.TransactionKindCharge)
}

// Pay records a payment against the account. Payments are never declined.
func (s *TransactionServiceImpl) Pay(ctx context.Context, accountID string, req *models.TransactionRequest) (*models.TransactionResponse, error) {
	return s.apply(ctx, accountID, req, models.TransactionKindPayment)
}

func (s *TransactionServiceImpl) apply(ctx context.Context, accountID string, req *models.TransactionRequest, kind string) (*models.TransactionResponse, error) {
	if err := s.validateTransactionRequest(accountID, req); err != nil {
		s.logger.Warn("invalid "+kind+" request",
			"account_id", accountID,
			"amount", req.Amount,
			"day", req.Day,
			"error", err.Error(),
		)
		return nil, err
	}

	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("account not found",
				"account_id", accountID,
			)
			return nil, err
		}
		s.logger.Error("failed to get account",
			"account_id", accountID,
			"error", err.Error(),
		)
		return nil, errors.NewTransactionError("get account", err)
	}

	l := account.Ledger

	// before and after come from the ledger's own critical section
	var m ledger.Mutation
	if kind == models.TransactionKindCharge {
		m, err = l.ApplyCharge(req.Amount, req.Day)
	} else {
		m, err = l.ApplyPayment(req.Amount, req.Day)
	}

	old := models.AccountBalanceSnapshot{
		ID:                 accountID,
		OutstandingBalance: m.BalanceBefore,
		LastTransactionDay: m.LastDayBefore,
	}
	updated := models.AccountBalanceSnapshot{
		ID:                 accountID,
		OutstandingBalance: m.BalanceAfter,
		LastTransactionDay: m.LastDayAfter,
	}

	resp := &models.TransactionResponse{
		AccountID:          accountID,
		Kind:               kind,
		Amount:             req.Amount,
		Day:                req.Day,
		Accepted:           err == nil,
		OutstandingBalance: m.BalanceAfter,
	}

	if err != nil {
		if errors.IsDeclined(err) {
			s.logger.Warn("charge declined, credit limit would be exceeded",
				"account_id", accountID,
				"outstanding_balance", m.BalanceBefore,
				"credit_limit", l.CreditLimit(),
				"requested_amount", req.Amount,
				"day", req.Day,
			)
			if auditErr := s.createTransactionAuditLog(ctx, models.AuditActionDecline, req.Day, old, updated); auditErr != nil {
				s.logger.Error("failed to create audit log for declined charge",
					"account_id", accountID,
					"error", auditErr.Error(),
				)
			}
			return resp, fmt.Errorf("charge of %.2f on day %d: %w", req.Amount, req.Day, err)
		}
		s.logger.Warn("invalid "+kind+" request",
			"account_id", accountID,
			"error", err.Error(),
		)
		return nil, err
	}

	action := models.AuditActionCharge
	if kind == models.TransactionKindPayment {
		action = models.AuditActionPayment
	}
	// continue even if audit logging fails
	if err := s.createTransactionAuditLog(ctx, action, req.Day, old, updated); err != nil {
		s.logger.Error("failed to create audit log for "+kind,
			"account_id", accountID,
			"error", err.Error(),
		)
	}

	s.logger.Info(kind+" applied",
		"account_id", accountID,
		"amount", req.Amount,
		"day", req.Day,
		"outstanding_balance", resp.OutstandingBalance,
	)
	return resp, nil
}

func (s *TransactionServiceImpl) validateTransactionRequest(accountID string, req *models.TransactionRequest) error {
	if accountID == "" {
		return errors.ErrInvalidAccountID
	}
	if req.Amount <= 0 {
		return errors.ErrInvalidAmount
	}
	if req.Day < 0 {
		return errors.ErrInvalidDay
	}
	return nil
}

func (s *TransactionServiceImpl) createTransactionAuditLog(ctx context.Context, action string, day int, old, updated models.AccountBalanceSnapshot) error {
	oldValue, err := json.Marshal(old)
	if err != nil {
		return err
	}
	newValue, err := json.Marshal(updated)
	if err != nil {
		return err
	}

	auditLog := &models.AuditLog{
		EntityType: models.EntityTypeAccount,
		EntityID:   old.ID,
		Action:     action,
		Day:        day,
		OldValue:   oldValue,
		NewValue:   newValue,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		return fmt.Errorf("failed to create %s audit log: %w", action, err)
	}
	return nil
}
