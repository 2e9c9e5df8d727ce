package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MockWalletAddress is the address used when a wallet is "connected".
const MockWalletAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d89A21"

// Seed returns the fixed dataset every session starts from.
func Seed() State {
	tx := func(id, date, merchant string, amount int64, c Category, t Type, m Method, hash string) Transaction {
		return Transaction{
			ID:          id,
			Date:        mustDate(date),
			Merchant:    merchant,
			Amount:      decimal.NewFromInt(amount),
			Category:    c,
			Type:        t,
			Method:      m,
			TxHash:      hash,
			BlockStatus: BlockVerified,
		}
	}

	apy := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	return State{
		MonthlyIncome:  decimal.NewFromInt(85000),
		CurrentBalance: decimal.NewFromInt(24500),
		VaultBalance:   decimal.NewFromInt(150000),
		FinTokens:      250,
		Budgets: map[string]decimal.Decimal{
			string(CategoryFood):          decimal.NewFromInt(8000),
			string(CategoryTransport):     decimal.NewFromInt(3000),
			string(CategoryShopping):      decimal.NewFromInt(5000),
			string(CategoryEntertainment): decimal.NewFromInt(2000),
			string(CategoryBills):         decimal.NewFromInt(20000),
		},
		Transactions: []Transaction{
			tx("1", "2023-10-25", "Swiggy", 450, CategoryFood, TypeDebit, MethodUPI, "0x71c...9a21"),
			tx("2", "2023-10-24", "Uber", 320, CategoryTransport, TypeDebit, MethodUPI, "0x32a...b119"),
			tx("10", "2023-10-24", "Chai Point", 150, CategoryFood, TypeDebit, MethodUPI, "0x99c...d442"),
			tx("3", "2023-10-24", "Netflix", 649, CategoryEntertainment, TypeDebit, MethodCard, "0x11f...a223"),
			tx("11", "2023-10-23", "Blinkit", 280, CategoryShopping, TypeDebit, MethodUPI, "0x88e...c331"),
			tx("4", "2023-10-22", "Salary Credit", 85000, CategorySalary, TypeCredit, MethodBankTransfer, "0x44d...e112"),
			tx("5", "2023-10-21", "Amazon", 4500, CategoryShopping, TypeDebit, MethodUPI, "0x22b...f991"),
			tx("6", "2023-10-20", "Zomato", 850, CategoryFood, TypeDebit, MethodUPI, "0x66a...c882"),
			tx("12", "2023-10-20", "Rapido", 85, CategoryTransport, TypeDebit, MethodUPI, "0x55e...d773"),
			tx("7", "2023-10-19", "Electricity Bill", 2400, CategoryBills, TypeDebit, MethodUPI, "0x33c...b664"),
			tx("8", "2023-10-18", "Starbucks", 350, CategoryFood, TypeDebit, MethodUPI, "0x11d...a555"),
			tx("9", "2023-10-15", "HDFC EMI", 15000, CategoryBills, TypeDebit, MethodBankTransfer, "0x99a...e446"),
			tx("13", "2023-10-14", "Social Offline", 2400, CategoryFood, TypeDebit, MethodUPI, "0x77b...c337"),
			tx("14", "2023-10-12", "Myntra", 1800, CategoryShopping, TypeDebit, MethodUPI, "0x55c...d228"),
		},
		Bills: []Bill{
			{ID: "b1", Name: "Credit Card Bill", Amount: decimal.NewFromInt(12000), DueDate: mustDate("2023-11-05")},
			{ID: "b2", Name: "Rent", Amount: decimal.NewFromInt(25000), DueDate: mustDate("2023-11-01")},
			{ID: "b3", Name: "Internet", Amount: decimal.NewFromInt(999), DueDate: mustDate("2023-11-10")},
		},
		Goals: []Goal{
			{
				ID:                   "g1",
				Name:                 "Bali Trip",
				TargetAmount:         decimal.NewFromInt(150000),
				CurrentAmount:        decimal.NewFromInt(45000),
				Deadline:             mustDate("2024-03-01"),
				SmartContractAddress: "0x88...A1b2",
				APY:                  apy("4.5"),
			},
			{
				ID:                   "g2",
				Name:                 "Emergency Fund",
				TargetAmount:         decimal.NewFromInt(300000),
				CurrentAmount:        decimal.NewFromInt(120000),
				Deadline:             mustDate("2024-12-31"),
				SmartContractAddress: "0x99...C3d4",
				APY:                  apy("3.2"),
			},
		},
	}
}

func mustDate(s string) time.Time {
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		panic(err)
	}

	return t
}
