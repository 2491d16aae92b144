// Command scenarios replays the sample credit card scenarios and prints the
// account log for each.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/ledger"
	"github.com/riteshkumar/credit-ledger/internal/report"
)

type step struct {
	kind   string
	amount float64
	day    int
}

type scenario struct {
	name     string
	limit    float64
	apr      float64
	steps    []step
	queryDay int
}

var scenarios = []scenario{
	{
		name:     "Test Scenario 1",
		limit:    1000,
		apr:      0.35,
		steps:    []step{{"charge", 500, 0}},
		queryDay: 30,
	},
	{
		name:  "Test Scenario 2",
		limit: 1000,
		apr:   0.35,
		steps: []step{
			{"charge", 500, 0},
			{"payment", 200, 15},
			{"charge", 100, 25},
		},
		queryDay: 30,
	},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	for i, sc := range scenarios {
		if i > 0 {
			fmt.Print("\n\n\n")
		}
		if err := run(os.Stdout, sc); err != nil {
			logger.Error("scenario failed", "scenario", sc.name, "error", err.Error())
			os.Exit(1)
		}
	}
}

func run(w io.Writer, sc scenario) error {
	fmt.Fprintln(w, sc.name)

	acct, err := ledger.NewAccount(sc.limit, sc.apr)
	if err != nil {
		return err
	}
	report.Opened(w, acct)

	for _, s := range sc.steps {
		switch s.kind {
		case "charge":
			err := acct.Charge(s.amount, s.day)
			if errors.IsDeclined(err) {
				report.Declined(w, s.amount, s.day)
				continue
			}
			if err != nil {
				return err
			}
			report.Charged(w, s.amount, s.day)
		case "payment":
			if err := acct.Pay(s.amount, s.day); err != nil {
				return err
			}
			report.Paid(w, s.amount, s.day)
		default:
			return fmt.Errorf("unknown step kind %q", s.kind)
		}
	}

	balance, err := acct.BalanceAt(sc.queryDay)
	if err != nil {
		return err
	}
	report.Balance(w, sc.queryDay, balance)
	report.TransactionRecords(w, acct.TransactionHistory())
	report.BalanceHistory(w, acct.BalanceHistory())
	return nil
}
