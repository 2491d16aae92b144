// Package report renders ledger values as the human-readable account log.
// It only reads from the account.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/credit-ledger/internal/ledger"
)

// Money formats an amount as dollars with two decimal places.
func Money(amount float64) string {
	d := decimal.NewFromFloat(amount)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Percent renders an APR as a whole percentage, truncating any fraction.
func Percent(apr float64) string {
	return decimal.NewFromFloat(apr).Shift(2).Truncate(0).String() + "%"
}

// Utilization is the share of the credit limit in use, rounded to a whole percent.
func Utilization(acct *ledger.Account) string {
	return utilization(acct.OutstandingBalance(), acct.CreditLimit())
}

func utilization(balance, limit float64) string {
	used := decimal.NewFromFloat(balance)
	return used.Div(decimal.NewFromFloat(limit)).Shift(2).Round(0).String() + "%"
}

func Opened(w io.Writer, acct *ledger.Account) {
	opened(w, acct.CreditLimit(), acct.APR())
}

func opened(w io.Writer, limit, apr float64) {
	fmt.Fprintf(w, "A credit with %s limit and %s APR is created\n", Money(limit), Percent(apr))
}

func Charged(w io.Writer, amount float64, day int) {
	fmt.Fprintf(w, "Charged %s to the card on day %d\n", Money(amount), day)
}

func Declined(w io.Writer, amount float64, day int) {
	fmt.Fprintf(w, "Credit limit will be exceeded, purchase of %s on day %d failed\n", Money(amount), day)
}

func Paid(w io.Writer, amount float64, day int) {
	fmt.Fprintf(w, "Paid back %s to the card on day %d\n", Money(amount), day)
}

func Balance(w io.Writer, day int, balance float64) {
	fmt.Fprintf(w, "Outstanding Balance at day %d: %s\n", day, Money(balance))
}

func TransactionRecords(w io.Writer, history []ledger.Transaction) {
	fmt.Fprint(w, "\n--Transaction Records--\n")
	fmt.Fprint(w, "Day \t\t Transaction\n")
	for _, tx := range history {
		fmt.Fprintf(w, "%d \t\t %s\n", tx.Day, Money(tx.Amount))
	}
}

func BalanceHistory(w io.Writer, history []ledger.Snapshot) {
	fmt.Fprint(w, "\n--Balance History--\n")
	fmt.Fprint(w, "Day \t\t Balance\n")
	for _, s := range history {
		fmt.Fprintf(w, "%d \t\t %s\n", s.Day, Money(s.Balance))
	}
}

// Statement writes the balance on day followed by both history tables, all
// taken from one consistent read of the account.
func Statement(w io.Writer, acct *ledger.Account, day int) error {
	v, err := acct.View(day)
	if err != nil {
		return fmt.Errorf("statement for day %d: %w", day, err)
	}

	opened(w, v.CreditLimit, v.APR)
	Balance(w, day, v.Quote.Balance)
	fmt.Fprintf(w, "Credit utilization: %s\n", utilization(v.Quote.Principal, v.CreditLimit))
	TransactionRecords(w, v.Transactions)
	BalanceHistory(w, v.Balances)
	return nil
}
