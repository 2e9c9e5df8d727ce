package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Token rewards per action.
const (
	RewardLogTransaction int64 = 10
	RewardPayBill        int64 = 50
	RewardPeerTransfer   int64 = 25
	// Staking earns one token per StakeRewardUnit committed.
	StakeRewardUnit int64 = 100
)

// Merchant names used for synthesized transactions.
const (
	MerchantStake         = "Smart Contract Deposit"
	MerchantVaultDeposit  = "FinVault Deposit"
	MerchantVaultWithdraw = "FinVault Withdrawal"
)

// Meta carries the non-deterministic parts of a new transaction so that the functions in
// this file stay pure.
type Meta struct {
	ID   string
	Date time.Time
	Hash string
}

// AddTransaction records a manually logged transaction.
func AddTransaction(s State, d Draft, meta Meta) State {
	tx := d.Build(meta)
	if s.WalletConnected() {
		tx.TxHash = meta.Hash
		tx.BlockStatus = BlockVerified
	}

	out := apply(s, tx)
	out.FinTokens += RewardLogTransaction

	return out
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// Unknown ids leave the state untouched.
func DeleteTransaction(s State, id string) State {
	idx := -1

	for i, tx := range s.Transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		return s
	}

	out := s.Clone()
	out.CurrentBalance = out.CurrentBalance.Sub(s.Transactions[idx].Signed())
	out.Transactions = append(out.Transactions[:idx], out.Transactions[idx+1:]...)

	return out
}

// MarkBillPaid pays an unpaid bill from the wallet. Paying twice is a no-op.
func MarkBillPaid(s State, id string, meta Meta) State {
	idx := -1

	for i, b := range s.Bills {
		if b.ID == id {
			idx = i
			break
		}
	}

	if idx < 0 || s.Bills[idx].IsPaid {
		return s
	}

	bill := s.Bills[idx]
	tx := Transaction{
		ID:       meta.ID,
		Date:     Day(meta.Date),
		Merchant: bill.Name,
		Amount:   bill.Amount,
		Category: CategoryBills,
		Type:     TypeDebit,
		Method:   MethodUPI,
	}

	if s.WalletConnected() {
		tx.TxHash = meta.Hash
		tx.BlockStatus = BlockVerified
	}

	out := apply(s, tx)
	out.Bills[idx].IsPaid = true
	out.FinTokens += RewardPayBill

	return out
}

// AddGoal appends g as given; the caller owns the id.
func AddGoal(s State, g Goal) State {
	out := s.Clone()
	out.Goals = append(out.Goals, g)

	return out
}

// StakeToGoal locks amount from the wallet into a goal.
func StakeToGoal(s State, goalID string, amount decimal.Decimal, meta Meta) State {
	idx := -1

	for i, g := range s.Goals {
		if g.ID == goalID {
			idx = i
			break
		}
	}

	if idx < 0 || !amount.IsPositive() {
		return s
	}

	out := apply(s, contractTx(meta, MerchantStake, amount, TypeDebit))
	out.Goals[idx].CurrentAmount = out.Goals[idx].CurrentAmount.Add(amount)
	out.FinTokens += StakeReward(amount)

	return out
}

// StakeReward is the token award for staking amount.
func StakeReward(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}

	return amount.Div(decimal.NewFromInt(StakeRewardUnit)).Floor().IntPart()
}

func UpdateIncome(s State, income decimal.Decimal) State {
	out := s.Clone()
	out.MonthlyIncome = income

	return out
}

func UpdateBudget(s State, category string, limit decimal.Decimal) State {
	out := s.Clone()
	out.Budgets[category] = limit

	return out
}

// P2PTransfer sends amount from the wallet to recipient.
func P2PTransfer(s State, recipient string, amount decimal.Decimal, meta Meta) State {
	if !amount.IsPositive() {
		return s
	}

	out := apply(s, contractTx(meta, fmt.Sprintf("Transfer to %s", recipient), amount, TypeDebit))
	out.FinTokens += RewardPeerTransfer

	return out
}

// VaultTransfer moves amount between the wallet and the vault.
func VaultTransfer(s State, amount decimal.Decimal, dir Direction, meta Meta) State {
	if !amount.IsPositive() || !dir.Valid() {
		return s
	}

	var tx Transaction

	switch dir {
	case DirectionDeposit:
		tx = contractTx(meta, MerchantVaultDeposit, amount, TypeDebit)
	case DirectionWithdraw:
		tx = contractTx(meta, MerchantVaultWithdraw, amount, TypeCredit)
	}

	out := apply(s, tx)
	out.VaultBalance = out.VaultBalance.Sub(tx.Signed())

	return out
}

func ConnectWallet(s State, address string) State {
	out := s.Clone()
	out.WalletAddress = &address

	return out
}

func DisconnectWallet(s State) State {
	out := s.Clone()
	out.WalletAddress = nil

	return out
}

// ImportTransactions adds externally sourced transactions, keeping their own dates.
// The ledger stays ordered newest first; imports earn no tokens.
func ImportTransactions(s State, txs []Transaction) State {
	if len(txs) == 0 {
		return s
	}

	out := s.Clone()

	merged := make([]Transaction, 0, len(txs)+len(out.Transactions))
	for _, tx := range txs {
		tx.Date = Day(tx.Date)
		merged = append(merged, tx)
		out.CurrentBalance = out.CurrentBalance.Add(tx.Signed())
	}

	merged = append(merged, out.Transactions...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	out.Transactions = merged

	return out
}

// apply prepends tx and moves the wallet balance by its signed amount.
func apply(s State, tx Transaction) State {
	out := s.Clone()
	out.CurrentBalance = out.CurrentBalance.Add(tx.Signed())
	out.Transactions = append([]Transaction{tx}, out.Transactions...)

	return out
}

// contractTx builds the always-hashed transaction used by stake, P2P and vault moves.
func contractTx(meta Meta, merchant string, amount decimal.Decimal, t Type) Transaction {
	return Transaction{
		ID:          meta.ID,
		Date:        Day(meta.Date),
		Merchant:    merchant,
		Amount:      amount,
		Category:    CategoryTransfer,
		Type:        t,
		Method:      MethodCrypto,
		TxHash:      meta.Hash,
		BlockStatus: BlockVerified,
	}
}
