package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of spending categories a transaction can carry.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategorySalary        Category = "Salary"
	CategoryTransfer      Category = "Transfer"
	CategoryOther         Category = "Other"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryBills,
		CategoryEntertainment,
		CategoryHealth,
		CategorySalary,
		CategoryTransfer,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping, CategoryBills, CategoryEntertainment,
		CategoryHealth, CategorySalary, CategoryTransfer, CategoryOther:
		return true
	}

	return false
}

// Type tells whether a transaction takes money out of the wallet or brings it in.
type Type string

const (
	TypeDebit  Type = "debit"
	TypeCredit Type = "credit"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDebit, TypeCredit:
		return true
	}

	return false
}

// Method is the payment rail a transaction went through.
type Method string

const (
	MethodUPI          Method = "UPI"
	MethodCard         Method = "Card"
	MethodBankTransfer Method = "Bank Transfer"
	MethodCrypto       Method = "Crypto"
)

func Methods() []Method {
	return []Method{MethodUPI, MethodCard, MethodBankTransfer, MethodCrypto}
}

func (m Method) Valid() bool {
	switch m {
	case MethodUPI, MethodCard, MethodBankTransfer, MethodCrypto:
		return true
	}

	return false
}

// BlockStatus is the cosmetic on-chain state shown next to a provenance hash.
type BlockStatus string

const (
	BlockPending  BlockStatus = "pending"
	BlockVerified BlockStatus = "verified"
)

// Direction selects which way money moves between the wallet and the vault.
type Direction string

const (
	DirectionDeposit  Direction = "deposit"
	DirectionWithdraw Direction = "withdraw"
)

func (d Direction) Valid() bool {
	switch d {
	case DirectionDeposit, DirectionWithdraw:
		return true
	}

	return false
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID          string
	Date        time.Time // day precision, local midnight
	Merchant    string
	Amount      decimal.Decimal
	Category    Category
	Type        Type
	Method      Method
	TxHash      string
	BlockStatus BlockStatus
}

// Signed returns the balance effect of the transaction.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TypeCredit {
		return t.Amount
	}

	return t.Amount.Neg()
}

type Bill struct {
	ID      string
	Name    string
	Amount  decimal.Decimal
	DueDate time.Time
	IsPaid  bool
}

type Goal struct {
	ID                   string
	Name                 string
	TargetAmount         decimal.Decimal
	CurrentAmount        decimal.Decimal
	Deadline             time.Time
	SmartContractAddress string
	APY                  *decimal.Decimal
}

// State is the aggregate root for a single session.
type State struct {
	MonthlyIncome  decimal.Decimal
	CurrentBalance decimal.Decimal
	VaultBalance   decimal.Decimal
	WalletAddress  *string
	FinTokens      int64
	Transactions   []Transaction // newest first
	Bills          []Bill
	Goals          []Goal
	Budgets        map[string]decimal.Decimal
}

// WalletConnected reports whether a mock wallet address is set.
func (s State) WalletConnected() bool {
	return s.WalletAddress != nil && *s.WalletAddress != ""
}

func (s State) FindTransaction(id string) (Transaction, bool) {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}

	return Transaction{}, false
}

func (s State) FindBill(id string) (Bill, bool) {
	for _, b := range s.Bills {
		if b.ID == id {
			return b, true
		}
	}

	return Bill{}, false
}

func (s State) FindGoal(id string) (Goal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}

	return Goal{}, false
}

// Clone returns a copy that shares no slices or maps with s.
func (s State) Clone() State {
	out := s

	out.Transactions = append([]Transaction(nil), s.Transactions...)
	out.Bills = append([]Bill(nil), s.Bills...)
	out.Goals = append([]Goal(nil), s.Goals...)

	out.Budgets = make(map[string]decimal.Decimal, len(s.Budgets))
	for k, v := range s.Budgets {
		out.Budgets[k] = v
	}

	if s.WalletAddress != nil {
		out.WalletAddress = new(*s.WalletAddress)
	}

	return out
}

// Net sums the signed balance effect of txs: credits minus debits.
func Net(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}

	return total
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
