package advisor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/money"
)

// SystemInstruction sets the advisor persona and the report layout.
const SystemInstruction = `You are FinCo, an elite financial co-pilot for UPI-first Indians. You do not just summarize data; you detect hidden patterns, predict future cashflow problems, and offer high-IQ financial strategies.

You are analyzing data for a user in India. Use ₹ (INR).

### 1. CORE ANALYSIS (Mental Workspace)
Before generating the report, think about:
- **Burn Rate:** How fast are they spending relative to days passed?
- **The "Latte Factor":** Identify the sum of small UPI transactions (<₹500).
- **Liquidity Check:** Current Balance vs Upcoming Bills (within 10 days). Are they insolvent?
- **Goal Reality Check:** At current savings rate, will they actually hit their deadlines?
- **Category Analysis:** Group spending by category. Identify anomalies or excessive spending in specific areas.

### 2. REPORT STRUCTURE (Markdown)

## 🚨 Cashflow Forecast
*   **Status:** [Safe / Tight / Critical]
*   **Projection:** "Based on your current balance of ₹[Balance] and ₹[Upcoming Bills Total] in bills due soon, your projected month-end balance is **₹[Projection]**."
>   *Insight:* a specific warning or positive reinforcement about their liquidity.

## 💸 Spending Habits & Insights
*   **Top Spend Areas:**
    *   **[Category Name] (₹[Amount]):** [Specific insight]
    *   **[Category Name] (₹[Amount]):** [Insight]
*   **The "Guilt" Metric:** "You spent ₹[Amount] on [Category] which could have funded [Goal Name] by [Percentage]%."
>   *Pattern:* a behavior pattern like "Heavy weekend spending" or "Recurring small transactions".

## 📊 Financial Vitals
| Metric | Value | Health |
| :--- | :--- | :--- |
| **Monthly Burn** | ₹[Amount] | [Low/High] |
| **UPI Velocity** | [X] txns/week | [High/Low] |
| **Savings Rate** | [X]% | [Good/Bad] |

## 🎯 Goal Acceleration
*   **[Goal Name]:** [On Track / At Risk]
>   *Strategy:* a trade-off such as "If you cut [Category] spend by 10%, you reach this goal [X] weeks earlier."

## 💡 Smart Moves & Product Match
*   **Leakage:** specific recurring wastes.
*   **Product:** instruments that fit their *actual* behavior.

## 🚀 3 Concrete Actions for Today
1.  [Action 1]
2.  [Action 2]
3.  [Action 3]

Tone: Sharp, Data-Driven, Forward-Looking, slightly witty. Use bolding for key numbers.`

type snapshotTransaction struct {
	Date     string          `json:"date"`
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Category ledger.Category `json:"category"`
	Type     ledger.Type     `json:"type"`
	Method   ledger.Method   `json:"method"`
}

type snapshotBill struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"dueDate"`
	IsPaid  bool            `json:"isPaid"`
}

type snapshotGoal struct {
	Name          string           `json:"name"`
	TargetAmount  decimal.Decimal  `json:"targetAmount"`
	CurrentAmount decimal.Decimal  `json:"currentAmount"`
	Deadline      string           `json:"deadline"`
	APY           *decimal.Decimal `json:"apy,omitempty"`
}

func analysisPrompt(s ledger.State) (string, error) {
	goals := make([]snapshotGoal, len(s.Goals))
	for i, g := range s.Goals {
		goals[i] = snapshotGoal{
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			Deadline:      g.Deadline.Format(time.DateOnly),
			APY:           g.APY,
		}
	}

	txs := make([]snapshotTransaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		txs[i] = snapshotTransaction{
			Date:     tx.Date.Format(time.DateOnly),
			Merchant: tx.Merchant,
			Amount:   tx.Amount,
			Category: tx.Category,
			Type:     tx.Type,
			Method:   tx.Method,
		}
	}

	bills := make([]snapshotBill, len(s.Bills))
	for i, b := range s.Bills {
		bills[i] = snapshotBill{Name: b.Name, Amount: b.Amount, DueDate: b.DueDate.Format(time.DateOnly), IsPaid: b.IsPaid}
	}

	sections := []struct {
		title string
		value any
	}{
		{"USER_GOALS", goals},
		{"RECENT_TRANSACTIONS", txs},
		{"UPCOMING_BILLS", bills},
	}

	var b strings.Builder

	b.WriteString("Perform a deep financial analysis on this user.\n\n")
	b.WriteString("1. Calculate their \"Burn Rate\" (daily spend).\n")
	b.WriteString("2. Analyze their \"UPI Velocity\" (frequency of small <₹500 transactions).\n")
	b.WriteString("3. Analyze spending habits by category: calculate totals, identify the top 2-3 spending categories, and find actionable areas for savings.\n")
	b.WriteString("4. Project their month-end balance considering upcoming bills.\n")
	fmt.Fprintf(&b, "5. Suggest specific trade-offs to hit their %s goals faster.\n\n", goalNames(s.Goals))
	b.WriteString("INPUT DATA:\n")

	for _, sec := range sections {
		body, err := json.MarshalIndent(sec.value, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", strings.ToLower(sec.title), err)
		}

		fmt.Fprintf(&b, "\n%s:\n%s\n", sec.title, body)
	}

	fmt.Fprintf(&b, "\nCURRENT_BALANCES:\nCurrent Balance: %s\nVault Balance: %s\n", money.Format(s.CurrentBalance), money.Format(s.VaultBalance))
	fmt.Fprintf(&b, "\nMONTHLY_INCOME:\n%s\n", money.Format(s.MonthlyIncome))

	return b.String(), nil
}

func goalNames(goals []ledger.Goal) string {
	if len(goals) == 0 {
		return "savings"
	}

	names := make([]string, 0, 2)
	for _, g := range goals[:min(2, len(goals))] {
		names = append(names, fmt.Sprintf("'%s'", g.Name))
	}

	return strings.Join(names, " or ")
}

func chatSystem(s ledger.State) string {
	next := "None"

	for _, b := range s.Bills {
		if !b.IsPaid {
			next = b.Name
			break
		}
	}

	return fmt.Sprintf(`%s

CURRENT CONTEXT:
Balance: %s
Next Bill: %s

If the user asks about general financial info (rates, news, stocks), use your search tool.`,
		SystemInstruction, money.Format(s.CurrentBalance), next)
}

func parsePrompt(text string, year int) string {
	return fmt.Sprintf("Parse the following transaction description into structured JSON data. Current Year is %d. Input text: %q", year, text)
}

// transactionSchema limits extraction to the ledger's own enumerations.
func transactionSchema() *Schema {
	categories := make([]string, 0, len(ledger.Categories()))
	for _, c := range ledger.Categories() {
		categories = append(categories, string(c))
	}

	return &Schema{
		Type: "OBJECT",
		Properties: map[string]Schema{
			"merchant": {Type: "STRING", Description: "Name of the merchant or person paid"},
			"amount":   {Type: "NUMBER", Description: "Amount in INR"},
			"category": {Type: "STRING", Enum: categories, Description: "The most appropriate category"},
			"type":     {Type: "STRING", Enum: []string{string(ledger.TypeDebit), string(ledger.TypeCredit)}},
			"method": {
				Type:        "STRING",
				Enum:        []string{string(ledger.MethodUPI), string(ledger.MethodCard), string(ledger.MethodBankTransfer)},
				Description: "Default to UPI if not specified",
			},
		},
		Required: []string{"merchant", "amount", "category", "type", "method"},
	}
}
