package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshkumar/credit-ledger/internal/errors"
	"github.com/riteshkumar/credit-ledger/internal/ledger"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$500.00", Money(500))
	assert.Equal(t, "$514.38", Money(514.3835616438356))
	assert.Equal(t, "$0.10", Money(0.1))
	assert.Equal(t, "-$200.00", Money(-200))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "35%", Percent(0.35))
	assert.Equal(t, "30%", Percent(0.30))
	assert.Equal(t, "0%", Percent(0))
	assert.Equal(t, "19%", Percent(0.199))
}

func TestConfirmations(t *testing.T) {
	var buf bytes.Buffer
	Charged(&buf, 500, 0)
	Paid(&buf, 200, 15)
	Declined(&buf, 900, 20)

	assert.Equal(t,
		"Charged $500.00 to the card on day 0\n"+
			"Paid back $200.00 to the card on day 15\n"+
			"Credit limit will be exceeded, purchase of $900.00 on day 20 failed\n",
		buf.String())
}

func TestStatement(t *testing.T) {
	acct, err := ledger.NewAccount(1000, 0.35)
	require.NoError(t, err)
	require.NoError(t, acct.Charge(500, 0))
	require.NoError(t, acct.Pay(200, 15))
	require.NoError(t, acct.Charge(100, 25))

	var buf bytes.Buffer
	require.NoError(t, Statement(&buf, acct, 30))

	want := "A credit with $1000.00 limit and 35% APR is created\n" +
		"Outstanding Balance at day 30: $411.99\n" +
		"Credit utilization: 40%\n" +
		"\n--Transaction Records--\n" +
		"Day \t\t Transaction\n" +
		"0 \t\t $500.00\n" +
		"15 \t\t -$200.00\n" +
		"25 \t\t $100.00\n" +
		"\n--Balance History--\n" +
		"Day \t\t Balance\n" +
		"0 \t\t $500.00\n" +
		"15 \t\t $300.00\n" +
		"25 \t\t $400.00\n"
	assert.Equal(t, want, buf.String())
}

func TestStatement_EmptyHistory(t *testing.T) {
	acct, err := ledger.NewAccount(1000, 0.2)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Statement(&buf, acct, 45)
	assert.ErrorIs(t, err, errors.ErrEmptyHistory)
	assert.Empty(t, buf.String())
}

func TestUtilization(t *testing.T) {
	acct, err := ledger.NewAccount(2000, 0.2)
	require.NoError(t, err)
	require.NoError(t, acct.Charge(500, 0))

	assert.Equal(t, "25%", Utilization(acct))
}

func TestStatement_ConcurrentWrites(t *testing.T) {
	acct, err := ledger.NewAccount(1_000_000, 0.2)
	require.NoError(t, err)
	require.NoError(t, acct.Charge(1, 0))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = acct.Charge(1, i%20)
		}
	}()

	for i := 0; i < 100; i++ {
		var buf bytes.Buffer
		require.NoError(t, Statement(&buf, acct, 5))

		// every charge is $1.00, so the record count must match the balance line
		out := buf.String()
		txTable, _, found := strings.Cut(out, "--Balance History--")
		require.True(t, found)
		records := strings.Count(txTable, "\t\t $1.00\n")
		assert.Contains(t, out, fmt.Sprintf("Outstanding Balance at day 5: $%d.00\n", records))
	}
	<-done
}
