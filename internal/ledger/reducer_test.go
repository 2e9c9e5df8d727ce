package ledger_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

var now = time.Date(2023, 10, 26, 15, 30, 0, 0, time.Local)

func meta(id string) ledger.Meta {
	return ledger.Meta{ID: id, Date: now, Hash: "0xabc"}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// reconciled checks that the balance still matches the seed plus the net effect of every
// transaction that was not part of the seed.
func reconciled(t *testing.T, seed, got ledger.State) {
	t.Helper()

	want := seed.CurrentBalance.Add(ledger.Net(got.Transactions)).Sub(ledger.Net(seed.Transactions))
	assert.True(t, want.Equal(got.CurrentBalance), "balance %s, want %s", got.CurrentBalance, want)
}

func TestAddTransaction(t *testing.T) {
	type args struct {
		draft  ledger.Draft
		wallet bool
	}

	type testCase struct {
		name        string
		args        args
		wantBalance decimal.Decimal
		wantHash    string
		wantStatus  ledger.BlockStatus
	}

	tests := []testCase{
		{
			name: "DebitFood",
			args: args{
				draft: ledger.Draft{}.WithMerchant("Swiggy").WithAmount(dec(450)).WithCategory(ledger.CategoryFood),
			},
			wantBalance: dec(24050),
		},
		{
			name: "Credit",
			args: args{
				draft: ledger.Draft{}.WithAmount(dec(1000)).WithType(ledger.TypeCredit),
			},
			wantBalance: dec(25500),
		},
		{
			name: "WalletConnectedAttachesHash",
			args: args{
				draft:  ledger.Draft{}.WithAmount(dec(100)),
				wallet: true,
			},
			wantBalance: dec(24400),
			wantHash:    "0xabc",
			wantStatus:  ledger.BlockVerified,
		},
		{
			name:        "EmptyDraft",
			args:        args{draft: ledger.Draft{}},
			wantBalance: dec(24500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledger.Seed()
			if tt.args.wallet {
				s = ledger.ConnectWallet(s, ledger.MockWalletAddress)
			}

			got := ledger.AddTransaction(s, tt.args.draft, meta("new"))

			assert.True(t, tt.wantBalance.Equal(got.CurrentBalance), "balance %s", got.CurrentBalance)
			assert.Len(t, got.Transactions, len(s.Transactions)+1)
			assert.Equal(t, s.FinTokens+ledger.RewardLogTransaction, got.FinTokens)
			assert.Equal(t, "new", got.Transactions[0].ID)
			assert.Equal(t, tt.wantHash, got.Transactions[0].TxHash)
			assert.Equal(t, tt.wantStatus, got.Transactions[0].BlockStatus)
			assert.Equal(t, ledger.Day(now), got.Transactions[0].Date)

			// the input state is untouched
			assert.True(t, dec(24500).Equal(s.CurrentBalance))
		})
	}
}

func TestAddDelete_Reconciles(t *testing.T) {
	seed := ledger.Seed()
	s := seed

	for i := range 20 {
		d := ledger.Draft{}.WithAmount(dec(int64(100 + i*37)))
		if i%3 == 0 {
			d = d.WithType(ledger.TypeCredit)
		}

		s = ledger.AddTransaction(s, d, meta(fmt.Sprintf("t%d", i)))
		reconciled(t, seed, s)

		if i%4 == 1 {
			s = ledger.DeleteTransaction(s, fmt.Sprintf("t%d", i-1))
			reconciled(t, seed, s)
		}
	}

	// seed transactions can be deleted too
	s = ledger.DeleteTransaction(s, "4")
	reconciled(t, seed, s)
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("ReversesDebit", func(t *testing.T) {
		s := ledger.Seed()
		got := ledger.DeleteTransaction(s, "1")

		assert.True(t, dec(24950).Equal(got.CurrentBalance))
		assert.Len(t, got.Transactions, len(s.Transactions)-1)

		_, found := got.FindTransaction("1")
		assert.False(t, found)
	})

	t.Run("ReversesCredit", func(t *testing.T) {
		got := ledger.DeleteTransaction(ledger.Seed(), "4")
		assert.True(t, dec(24500-85000).Equal(got.CurrentBalance))
	})

	t.Run("UnknownIDIsNoop", func(t *testing.T) {
		s := ledger.Seed()
		got := ledger.DeleteTransaction(s, "missing")

		assert.Equal(t, s, got)
	})

	t.Run("TokensUnchanged", func(t *testing.T) {
		s := ledger.Seed()
		got := ledger.DeleteTransaction(s, "1")
		assert.Equal(t, s.FinTokens, got.FinTokens)
	})
}

func TestDeleteThenReAdd_RestoresBalance(t *testing.T) {
	s := ledger.Seed()
	before := s.CurrentBalance

	tx, _ := s.FindTransaction("5")
	s = ledger.DeleteTransaction(s, "5")

	d := ledger.Draft{}.
		WithMerchant(tx.Merchant).
		WithAmount(tx.Amount).
		WithCategory(tx.Category).
		WithType(tx.Type).
		WithMethod(tx.Method)

	s = ledger.AddTransaction(s, d, meta("5b"))

	assert.True(t, before.Equal(s.CurrentBalance))
}

func TestMarkBillPaid(t *testing.T) {
	s := ledger.Seed()

	once := ledger.MarkBillPaid(s, "b1", meta("pay1"))
	twice := ledger.MarkBillPaid(once, "b1", meta("pay2"))

	assert.True(t, dec(12500).Equal(once.CurrentBalance))
	assert.Equal(t, s.FinTokens+ledger.RewardPayBill, once.FinTokens)
	assert.Len(t, once.Transactions, len(s.Transactions)+1)

	paid := once.Transactions[0]
	assert.Equal(t, "Credit Card Bill", paid.Merchant)
	assert.Equal(t, ledger.CategoryBills, paid.Category)
	assert.Equal(t, ledger.TypeDebit, paid.Type)
	assert.Empty(t, paid.TxHash)

	bill, _ := once.FindBill("b1")
	assert.True(t, bill.IsPaid)

	assert.Equal(t, once, twice)
	reconciled(t, s, twice)

	t.Run("UnknownBill", func(t *testing.T) {
		assert.Equal(t, s, ledger.MarkBillPaid(s, "nope", meta("x")))
	})

	t.Run("HashedWhenWalletConnected", func(t *testing.T) {
		w := ledger.ConnectWallet(s, ledger.MockWalletAddress)
		got := ledger.MarkBillPaid(w, "b3", meta("x"))
		assert.Equal(t, "0xabc", got.Transactions[0].TxHash)
	})
}

func TestStakeToGoal(t *testing.T) {
	type testCase struct {
		name       string
		goalID     string
		amount     decimal.Decimal
		wantTokens int64
		wantNoop   bool
	}

	tests := []testCase{
		{name: "Exact", goalID: "g1", amount: dec(5000), wantTokens: 50},
		{name: "Floors", goalID: "g2", amount: dec(1099), wantTokens: 10},
		{name: "BelowUnit", goalID: "g1", amount: dec(99), wantTokens: 0},
		{name: "Fractional", goalID: "g1", amount: decimal.RequireFromString("250.75"), wantTokens: 2},
		{name: "UnknownGoal", goalID: "g9", amount: dec(500), wantNoop: true},
		{name: "ZeroAmount", goalID: "g1", amount: decimal.Zero, wantNoop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledger.Seed()
			got := ledger.StakeToGoal(s, tt.goalID, tt.amount, meta("stake"))

			if tt.wantNoop {
				assert.Equal(t, s, got)
				return
			}

			before, _ := s.FindGoal(tt.goalID)
			after, _ := got.FindGoal(tt.goalID)

			assert.True(t, before.CurrentAmount.Add(tt.amount).Equal(after.CurrentAmount))
			assert.True(t, s.CurrentBalance.Sub(tt.amount).Equal(got.CurrentBalance))
			assert.Equal(t, s.FinTokens+tt.wantTokens, got.FinTokens)

			tx := got.Transactions[0]
			assert.Equal(t, ledger.MerchantStake, tx.Merchant)
			assert.Equal(t, ledger.CategoryTransfer, tx.Category)
			assert.Equal(t, ledger.MethodCrypto, tx.Method)
			assert.Equal(t, "0xabc", tx.TxHash, "stakes are hashed without a wallet")
		})
	}
}

func TestP2PTransfer(t *testing.T) {
	s := ledger.Seed()
	got := ledger.P2PTransfer(s, "Rahul", dec(500), meta("p2p"))

	assert.True(t, dec(24000).Equal(got.CurrentBalance))
	assert.Equal(t, s.FinTokens+ledger.RewardPeerTransfer, got.FinTokens)
	assert.Equal(t, "Transfer to Rahul", got.Transactions[0].Merchant)
	assert.Equal(t, ledger.TypeDebit, got.Transactions[0].Type)
	assert.NotEmpty(t, got.Transactions[0].TxHash)
	reconciled(t, s, got)
}

func TestVaultTransfer(t *testing.T) {
	type testCase struct {
		name        string
		amount      int64
		dir         ledger.Direction
		wantBalance int64
		wantVault   int64
		wantType    ledger.Type
		wantNoop    bool
	}

	tests := []testCase{
		{name: "Deposit", amount: 4500, dir: ledger.DirectionDeposit, wantBalance: 20000, wantVault: 154500, wantType: ledger.TypeDebit},
		{name: "Withdraw", amount: 10000, dir: ledger.DirectionWithdraw, wantBalance: 34500, wantVault: 140000, wantType: ledger.TypeCredit},
		{name: "BadDirection", amount: 100, dir: "sideways", wantNoop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledger.Seed()
			got := ledger.VaultTransfer(s, dec(tt.amount), tt.dir, meta("v"))

			if tt.wantNoop {
				assert.Equal(t, s, got)
				return
			}

			assert.True(t, dec(tt.wantBalance).Equal(got.CurrentBalance))
			assert.True(t, dec(tt.wantVault).Equal(got.VaultBalance))
			assert.Equal(t, tt.wantType, got.Transactions[0].Type)
			assert.Equal(t, s.FinTokens, got.FinTokens)
			// money is conserved across the two buckets
			assert.True(t, s.CurrentBalance.Add(s.VaultBalance).Equal(got.CurrentBalance.Add(got.VaultBalance)))
		})
	}
}

func TestUpdateIncomeAndBudget(t *testing.T) {
	s := ledger.Seed()

	got := ledger.UpdateIncome(s, dec(90000))
	got = ledger.UpdateBudget(got, "Travel", dec(4000))

	assert.True(t, dec(90000).Equal(got.MonthlyIncome))
	assert.True(t, dec(4000).Equal(got.Budgets["Travel"]))
	assert.True(t, s.CurrentBalance.Equal(got.CurrentBalance))

	_, leaked := s.Budgets["Travel"]
	assert.False(t, leaked)
}

func TestWallet(t *testing.T) {
	s := ledger.Seed()
	require.False(t, s.WalletConnected())

	on := ledger.ConnectWallet(s, ledger.MockWalletAddress)
	assert.True(t, on.WalletConnected())
	assert.Equal(t, ledger.MockWalletAddress, *on.WalletAddress)

	off := ledger.DisconnectWallet(on)
	assert.False(t, off.WalletConnected())
	assert.True(t, on.WalletConnected())
}

func TestImportTransactions(t *testing.T) {
	s := ledger.Seed()
	rows := []ledger.Transaction{
		{ID: "i1", Date: time.Date(2023, 10, 21, 9, 0, 0, 0, time.Local), Merchant: "Cafe", Amount: dec(200), Category: ledger.CategoryFood, Type: ledger.TypeDebit, Method: ledger.MethodCard},
		{ID: "i2", Date: time.Date(2023, 10, 30, 0, 0, 0, 0, time.Local), Merchant: "Refund", Amount: dec(700), Category: ledger.CategoryOther, Type: ledger.TypeCredit, Method: ledger.MethodUPI},
	}

	got := ledger.ImportTransactions(s, rows)

	assert.Len(t, got.Transactions, len(s.Transactions)+2)
	assert.Equal(t, "i2", got.Transactions[0].ID)
	assert.Equal(t, s.FinTokens, got.FinTokens)
	reconciled(t, s, got)

	for i := 1; i < len(got.Transactions); i++ {
		assert.False(t, got.Transactions[i].Date.After(got.Transactions[i-1].Date), "ledger must stay newest first")
	}

	assert.Equal(t, s, ledger.ImportTransactions(s, nil))
}

func TestStakeReward(t *testing.T) {
	assert.Equal(t, int64(0), ledger.StakeReward(dec(-500)))
	assert.Equal(t, int64(1), ledger.StakeReward(dec(199)))
	assert.Equal(t, int64(25), ledger.StakeReward(dec(2500)))
}
