// Package ledger holds the revolving-credit account engine: balance mutation,
// the sparse day-indexed history and simple-interest accrual over it.
package ledger

import (
	"math"
	"sort"
	"sync"

	"github.com/riteshkumar/credit-ledger/internal/errors"
)

// InterestFreeDays is the query day below which BalanceAt never adds interest.
const InterestFreeDays = 30

const daysPerYear = 365

// limitTolerance is the smallest slack allowed when a charge uses the exact
// headroom. Large limits widen it to a few float64 steps of the limit.
const limitTolerance = 1e-9

// limitSlackULPs is how many float64 steps of the limit the slack covers.
const limitSlackULPs = 4

// Transaction is a signed amount recorded on a day: positive for charges,
// negative for payments.
type Transaction struct {
	Day    int
	Amount float64
}

// Snapshot is the outstanding balance right after a day's last transaction.
type Snapshot struct {
	Day     int
	Balance float64
}

// Account is one revolving-credit line. It is safe for concurrent use.
type Account struct {
	mu sync.RWMutex

	creditLimit float64
	limitSlack  float64
	apr         float64
	dailyRate   float64

	outstandingBalance float64
	lastTransactionDay int

	transactionDays   map[int]struct{}
	transactionsByDay map[int][]float64
	balanceAfterDay   map[int]float64
}

// NewAccount opens a credit line. The limit and APR are fixed for its lifetime.
func NewAccount(creditLimit, apr float64) (*Account, error) {
	if creditLimit <= 0 || math.IsNaN(creditLimit) || math.IsInf(creditLimit, 0) {
		return nil, &errors.ValidationError{Field: "credit_limit", Message: "must be a positive finite number"}
	}
	if apr < 0 || apr >= 1 || math.IsNaN(apr) {
		return nil, &errors.ValidationError{Field: "apr", Message: "must be in [0, 1)"}
	}

	return &Account{
		creditLimit:       creditLimit,
		limitSlack:        slackFor(creditLimit),
		apr:               apr,
		dailyRate:         apr / daysPerYear,
		transactionDays:   make(map[int]struct{}),
		transactionsByDay: make(map[int][]float64),
		balanceAfterDay:   make(map[int]float64),
	}, nil
}

// Mutation is the account state on both sides of one charge or payment,
// taken inside the same critical section as the change.
type Mutation struct {
	Day    int
	Amount float64 // signed: positive for charges, negative for payments

	BalanceBefore float64
	BalanceAfter  float64
	LastDayBefore int
	LastDayAfter  int
}

// Charge records a purchase. It returns ErrLimitExceeded, leaving the account
// untouched, when the purchase would take the balance above the credit limit.
func (a *Account) Charge(amount float64, day int) error {
	_, err := a.ApplyCharge(amount, day)
	return err
}

// ApplyCharge is Charge returning the before and after state. A declined
// charge still reports the unchanged state with ErrLimitExceeded.
func (a *Account) ApplyCharge(amount float64, day int) (Mutation, error) {
	if err := validate(amount, day); err != nil {
		return Mutation{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	m := a.begin(amount, day)
	if a.outstandingBalance+amount > a.creditLimit+a.limitSlack {
		return m, errors.ErrLimitExceeded
	}
	a.record(amount, day)
	return a.finish(m), nil
}

// Pay records a payment. Payments are never declined, so an overpayment leaves
// a negative balance (a credit in the cardholder's favour).
func (a *Account) Pay(amount float64, day int) error {
	_, err := a.ApplyPayment(amount, day)
	return err
}

// ApplyPayment is Pay returning the before and after state.
func (a *Account) ApplyPayment(amount float64, day int) (Mutation, error) {
	if err := validate(amount, day); err != nil {
		return Mutation{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	m := a.begin(-amount, day)
	a.record(-amount, day)
	return a.finish(m), nil
}

func (a *Account) begin(signed float64, day int) Mutation {
	return Mutation{
		Day:           day,
		Amount:        signed,
		BalanceBefore: a.outstandingBalance,
		BalanceAfter:  a.outstandingBalance,
		LastDayBefore: a.lastTransactionDay,
		LastDayAfter:  a.lastTransactionDay,
	}
}

func (a *Account) finish(m Mutation) Mutation {
	m.BalanceAfter = a.outstandingBalance
	m.LastDayAfter = a.lastTransactionDay
	return m
}

// record applies a signed amount. Callers must hold the write lock.
func (a *Account) record(signed float64, day int) {
	a.outstandingBalance += signed

	a.transactionDays[day] = struct{}{}
	a.transactionsByDay[day] = append(a.transactionsByDay[day], signed)
	a.balanceAfterDay[day] = a.outstandingBalance

	if day > a.lastTransactionDay {
		a.lastTransactionDay = day
	}
}

// Quote is the amount owed as seen on a query day.
type Quote struct {
	Day             int
	Principal       float64
	Interest        float64
	Balance         float64
	InterestApplied bool
}

// Quote prices the account on day under a single read lock. Before
// InterestFreeDays the current balance is returned as is; from then on
// accrued interest is added.
func (a *Account) Quote(day int) (Quote, error) {
	if day < 0 {
		return Quote{}, errors.ErrInvalidDay
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.quote(day)
}

func (a *Account) quote(day int) (Quote, error) {
	q := Quote{Day: day, Principal: a.outstandingBalance, Balance: a.outstandingBalance}
	if day < InterestFreeDays {
		return q, nil
	}
	interest, err := a.accruedInterest(day)
	if err != nil {
		return Quote{}, err
	}
	q.Interest = interest
	q.Balance += interest
	q.InterestApplied = true
	return q, nil
}

// BalanceAt returns the balance of Quote(day).
func (a *Account) BalanceAt(day int) (float64, error) {
	q, err := a.Quote(day)
	if err != nil {
		return 0, err
	}
	return q.Balance, nil
}

// AccruedInterest integrates dailyRate * balance over every day in
// [earliest transaction day, day). The balance is a step function that changes
// on transaction days; a day's own transactions start accruing the next day.
func (a *Account) AccruedInterest(day int) (float64, error) {
	if day < 0 {
		return 0, errors.ErrInvalidDay
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.accruedInterest(day)
}

func (a *Account) accruedInterest(day int) (float64, error) {
	days := a.sortedDays()
	if len(days) == 0 {
		return 0, errors.ErrEmptyHistory
	}

	var interest float64
	prev := days[0]
	for _, d := range days {
		if d >= day {
			break
		}
		if d > prev {
			interest += float64(d-prev) * a.dailyRate * a.balanceAfterDay[prev]
		}
		prev = d
	}

	// a query on or before the first transaction day has nothing to accrue
	if span := day - prev; span > 0 {
		interest += float64(span) * a.dailyRate * a.balanceAfterDay[prev]
	}
	return interest, nil
}

// TransactionHistory returns every recorded amount ordered by day, keeping the
// order of application within a day.
func (a *Account) TransactionHistory() []Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.transactionHistory()
}

func (a *Account) transactionHistory() []Transaction {
	var out []Transaction
	for _, d := range a.sortedDays() {
		for _, amt := range a.transactionsByDay[d] {
			out = append(out, Transaction{Day: d, Amount: amt})
		}
	}
	return out
}

// BalanceHistory returns one snapshot per transaction day, ordered by day.
func (a *Account) BalanceHistory() []Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.balanceHistory()
}

func (a *Account) balanceHistory() []Snapshot {
	days := a.sortedDays()
	out := make([]Snapshot, 0, len(days))
	for _, d := range days {
		out = append(out, Snapshot{Day: d, Balance: a.balanceAfterDay[d]})
	}
	return out
}

// TransactionDays returns the distinct transaction days in ascending order.
func (a *Account) TransactionDays() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sortedDays()
}

func (a *Account) sortedDays() []int {
	days := make([]int, 0, len(a.transactionDays))
	for d := range a.transactionDays {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// View is a consistent read of the whole account priced on one query day.
type View struct {
	CreditLimit  float64
	APR          float64
	Quote        Quote
	Transactions []Transaction
	Balances     []Snapshot
}

// View reads the quote and both histories under a single read lock.
func (a *Account) View(day int) (View, error) {
	if day < 0 {
		return View{}, errors.ErrInvalidDay
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	q, err := a.quote(day)
	if err != nil {
		return View{}, err
	}
	return View{
		CreditLimit:  a.creditLimit,
		APR:          a.apr,
		Quote:        q,
		Transactions: a.transactionHistory(),
		Balances:     a.balanceHistory(),
	}, nil
}

// CreditLimit is the maximum balance a charge may reach.
func (a *Account) CreditLimit() float64 { return a.creditLimit }

// APR is the annual percentage rate the account was opened with.
func (a *Account) APR() float64 { return a.apr }

// DailyRate is APR / 365.
func (a *Account) DailyRate() float64 { return a.dailyRate }

// OutstandingBalance is the amount currently owed, without interest.
func (a *Account) OutstandingBalance() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.outstandingBalance
}

// AvailableCredit is the headroom left for charges.
func (a *Account) AvailableCredit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creditLimit - a.outstandingBalance
}

// LastTransactionDay is the latest day any transaction was recorded on.
func (a *Account) LastTransactionDay() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastTransactionDay
}

func validate(amount float64, day int) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return errors.ErrInvalidAmount
	}
	if day < 0 {
		return errors.ErrInvalidDay
	}
	return nil
}

// slackFor is the rounding slack for a limit: limitTolerance, or a few float64
// steps of the limit when those are wider. It stays far below one cent for
// any limit under 1e13.
func slackFor(limit float64) float64 {
	ulp := math.Nextafter(limit, math.Inf(1)) - limit
	return math.Max(limitTolerance, limitSlackULPs*ulp)
}
