package models

import (
	"encoding/json"
	"time"

	"github.com/riteshkumar/credit-ledger/internal/ledger"
)

type AuditLog struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Day        int             `json:"day"`
	OldValue   json.RawMessage `json:"old_value"`
	NewValue   json.RawMessage `json:"new_value"`
	CreatedAt  time.Time       `json:"created_at"`
}

const (
	AuditActionCreate  = "CREATE"
	AuditActionCharge  = "CHARGE"
	AuditActionPayment = "PAYMENT"
	AuditActionDecline = "DECLINE"
)

const (
	EntityTypeAccount = "ACCOUNT"
)

const (
	TransactionKindCharge  = "charge"
	TransactionKindPayment = "payment"
)

// CreateAccountRequest leaves a field nil when the caller omitted it, so an
// explicit zero still reaches validation.
type CreateAccountRequest struct {
	CreditLimit *float64 `json:"credit_limit"`
	APR         *float64 `json:"apr"`
}

type AccountResponse struct {
	ID                 string  `json:"id"`
	CreditLimit        float64 `json:"credit_limit"`
	APR                float64 `json:"apr"`
	DailyRate          float64 `json:"daily_rate"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	AvailableCredit    float64 `json:"available_credit"`
	LastTransactionDay int     `json:"last_transaction_day"`
}

type TransactionRequest struct {
	Amount float64 `json:"amount"`
	Day    int     `json:"day"`
}

type TransactionResponse struct {
	AccountID          string  `json:"account_id"`
	Kind               string  `json:"kind"`
	Amount             float64 `json:"amount"`
	Day                int     `json:"day"`
	Accepted           bool    `json:"accepted"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

type BalanceResponse struct {
	AccountID       string  `json:"account_id"`
	Day             int     `json:"day"`
	Balance         float64 `json:"balance"`
	AccruedInterest float64 `json:"accrued_interest"`
	InterestApplied bool    `json:"interest_applied"`
}

type InterestResponse struct {
	AccountID       string  `json:"account_id"`
	Day             int     `json:"day"`
	AccruedInterest float64 `json:"accrued_interest"`
}

type TransactionEntry struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

type BalanceSnapshot struct {
	Day     int     `json:"day"`
	Balance float64 `json:"balance"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AccountBalanceSnapshot is the audit payload stored before and after a change.
type AccountBalanceSnapshot struct {
	ID                 string  `json:"id"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	LastTransactionDay int     `json:"last_transaction_day"`
}

// Account is a registered credit line. The ledger owns all balance state.
type Account struct {
	ID        string
	Ledger    *ledger.Account
	CreatedAt time.Time
}
