package ledger

import (
	"github.com/shopspring/decimal"
)

// Event is a single user action expressed as data. Applying it is pure.
type Event interface {
	Name() string
	Apply(s State) State
}

type TransactionAdded struct {
	Draft Draft `json:"draft"`
	Meta  Meta  `json:"meta"`
}

func (e TransactionAdded) Name() string        { return "transaction.added" }
func (e TransactionAdded) Apply(s State) State { return AddTransaction(s, e.Draft, e.Meta) }

type TransactionDeleted struct {
	ID string `json:"id"`
}

func (e TransactionDeleted) Name() string        { return "transaction.deleted" }
func (e TransactionDeleted) Apply(s State) State { return DeleteTransaction(s, e.ID) }

type BillPaid struct {
	BillID string `json:"bill_id"`
	Meta   Meta   `json:"meta"`
}

func (e BillPaid) Name() string        { return "bill.paid" }
func (e BillPaid) Apply(s State) State { return MarkBillPaid(s, e.BillID, e.Meta) }

type GoalAdded struct {
	Goal Goal `json:"goal"`
}

func (e GoalAdded) Name() string        { return "goal.added" }
func (e GoalAdded) Apply(s State) State { return AddGoal(s, e.Goal) }

type GoalStaked struct {
	GoalID string          `json:"goal_id"`
	Amount decimal.Decimal `json:"amount"`
	Meta   Meta            `json:"meta"`
}

func (e GoalStaked) Name() string        { return "goal.staked" }
func (e GoalStaked) Apply(s State) State { return StakeToGoal(s, e.GoalID, e.Amount, e.Meta) }

type IncomeUpdated struct {
	Income decimal.Decimal `json:"income"`
}

func (e IncomeUpdated) Name() string        { return "income.updated" }
func (e IncomeUpdated) Apply(s State) State { return UpdateIncome(s, e.Income) }

type BudgetUpdated struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

func (e BudgetUpdated) Name() string        { return "budget.updated" }
func (e BudgetUpdated) Apply(s State) State { return UpdateBudget(s, e.Category, e.Limit) }

type PeerTransferred struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Meta      Meta            `json:"meta"`
}

func (e PeerTransferred) Name() string { return "transfer.sent" }
func (e PeerTransferred) Apply(s State) State {
	return P2PTransfer(s, e.Recipient, e.Amount, e.Meta)
}

type VaultMoved struct {
	Amount    decimal.Decimal `json:"amount"`
	Direction Direction       `json:"direction"`
	Meta      Meta            `json:"meta"`
}

func (e VaultMoved) Name() string { return "vault." + string(e.Direction) }
func (e VaultMoved) Apply(s State) State {
	return VaultTransfer(s, e.Amount, e.Direction, e.Meta)
}

type WalletConnected struct {
	Address string `json:"address"`
}

func (e WalletConnected) Name() string        { return "wallet.connected" }
func (e WalletConnected) Apply(s State) State { return ConnectWallet(s, e.Address) }

type WalletDisconnected struct{}

func (e WalletDisconnected) Name() string        { return "wallet.disconnected" }
func (e WalletDisconnected) Apply(s State) State { return DisconnectWallet(s) }

type TransactionsImported struct {
	Transactions []Transaction `json:"transactions"`
}

func (e TransactionsImported) Name() string { return "transactions.imported" }
func (e TransactionsImported) Apply(s State) State {
	return ImportTransactions(s, e.Transactions)
}
