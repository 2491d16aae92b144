package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/ledger"
	"github.com/riteshkumar/credit-ledger/internal/models"
	"github.com/riteshkumar/credit-ledger/internal/report"
	"github.com/riteshkumar/credit-ledger/internal/repository"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	BalanceAt(ctx context.Context, id string, day int) (ledger.Quote, error)
	AccruedInterest(ctx context.Context, id string, day int) (float64, error)
	TransactionHistory(ctx context.Context, id string) ([]ledger.Transaction, error)
	BalanceHistory(ctx context.Context, id string) ([]ledger.Snapshot, error)
	Statement(ctx context.Context, id string, day int, w io.Writer) error
}

// AccountDefaults fill in whichever fields a create request leaves unset.
type AccountDefaults struct {
	CreditLimit float64
	APR         float64
}

type AccountServiceImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditRepository
	defaults    AccountDefaults
	logger      *slog.Logger
}

func NewAccountService(accountRepo repository.AccountRepository, auditRepo repository.AuditRepository, defaults AccountDefaults, logger *slog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		defaults:    defaults,
		logger:      logger,
	}
}

func (s *AccountServiceImpl) CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.Account, error) {
	limit, apr := s.defaults.CreditLimit, s.defaults.APR
	if req.CreditLimit != nil {
		limit = *req.CreditLimit
	}
	if req.APR != nil {
		apr = *req.APR
	}

	l, err := ledger.NewAccount(limit, apr)
	if err != nil {
		s.logger.Warn("invalid create account request",
			"credit_limit", limit,
			"apr", apr,
			"error", err.Error(),
		)
		return nil, err
	}

	account := &models.Account{Ledger: l}
	if err := s.accountRepo.CreateAccount(ctx, account); err != nil {
		s.logger.Error("failed to create account",
			"error", err.Error(),
		)
		return nil, err
	}

	// Log audit entry for account creation
	if err := s.createAccountAuditLog(ctx, account); err != nil {
		s.logger.Error("failed to create audit log for account creation",
			"account_id", account.ID,
			"error", err.Error(),
		)
	}
	s.logger.Info("account created successfully",
		"account_id", account.ID,
		"credit_limit", limit,
		"apr", apr,
	)
	return account, nil
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	if id == "" {
		return nil, errors.ErrInvalidAccountID
	}

	account, err := s.accountRepo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("account not found",
				"account_id", id,
			)
			return nil, err
		}
		s.logger.Error("failed to get account",
			"account_id", id,
			"error", err.Error(),
		)
		return nil, err
	}

	return account, nil
}

func (s *AccountServiceImpl) BalanceAt(ctx context.Context, id string, day int) (ledger.Quote, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return ledger.Quote{}, err
	}

	q, err := account.Ledger.Quote(day)
	if err != nil {
		s.logger.Warn("balance query rejected",
			"account_id", id,
			"day", day,
			"error", err.Error(),
		)
		return ledger.Quote{}, err
	}
	return q, nil
}

func (s *AccountServiceImpl) AccruedInterest(ctx context.Context, id string, day int) (float64, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return 0, err
	}

	interest, err := account.Ledger.AccruedInterest(day)
	if err != nil {
		s.logger.Warn("interest query rejected",
			"account_id", id,
			"day", day,
			"error", err.Error(),
		)
		return 0, err
	}
	return interest, nil
}

func (s *AccountServiceImpl) TransactionHistory(ctx context.Context, id string) ([]ledger.Transaction, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Ledger.TransactionHistory(), nil
}

func (s *AccountServiceImpl) BalanceHistory(ctx context.Context, id string) ([]ledger.Snapshot, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Ledger.BalanceHistory(), nil
}

// Statement writes the human-readable report for day to w.
func (s *AccountServiceImpl) Statement(ctx context.Context, id string, day int, w io.Writer) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	return report.Statement(w, account.Ledger, day)
}

func (s *AccountServiceImpl) createAccountAuditLog(ctx context.Context, account *models.Account) error {
	snapshot := struct {
		ID          string  `json:"id"`
		CreditLimit float64 `json:"credit_limit"`
		APR         float64 `json:"apr"`
	}{
		ID:          account.ID,
		CreditLimit: account.Ledger.CreditLimit(),
		APR:         account.Ledger.APR(),
	}

	newValue, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	auditLog := &models.AuditLog{
		EntityType: models.EntityTypeAccount,
		EntityID:   account.ID,
		Action:     models.AuditActionCreate,
		NewValue:   newValue,
	}

	return s.auditRepo.Create(ctx, auditLog)
}
