package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/ledger/store"
)

func newTestLedger() *ledger.Service {
	now := time.Date(2023, 10, 26, 15, 30, 0, 0, time.Local)

	return ledger.NewService(
		store.New(ledger.Seed()),
		ledger.WithClock(func() time.Time { return now }),
		ledger.WithSettleDelay(0),
	)
}

func TestBar(t *testing.T) {
	type testCase struct {
		name string
		pct  int
		want string
	}

	tests := []testCase{
		{name: "Empty", pct: 0, want: "░░░░░░░░░░"},
		{name: "Half", pct: 50, want: "█████░░░░░"},
		{name: "Full", pct: 100, want: "██████████"},
		{name: "Overflow", pct: 140, want: "██████████"},
		{name: "Negative", pct: -5, want: "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bar(tt.pct, 10))
		})
	}
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount("450.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("450.5")))

	for _, in := range []string{"", "abc", "0", "-10"} {
		_, err := parseAmount(in)
		assert.ErrorIs(t, err, errInvalidAmount, in)
	}
}

func TestFormatSigned(t *testing.T) {
	amount := decimal.NewFromInt(1200)

	assert.Equal(t, "-₹1,200", FormatSigned(ledger.Transaction{Amount: amount, Type: ledger.TypeDebit}))
	assert.Equal(t, "+₹1,200", FormatSigned(ledger.Transaction{Amount: amount, Type: ledger.TypeCredit}))
}

func TestListInput_FillAndDraft(t *testing.T) {
	in := &listInput{}

	in.fill(ledger.Draft{}.WithMerchant("Dominos").WithAmount(decimal.NewFromInt(450)).WithMethod(ledger.MethodCard))

	assert.Equal(t, "Dominos", in.merchant)
	assert.Equal(t, "450", in.amount)
	assert.Equal(t, ledger.DefaultCategory, in.category)
	assert.Equal(t, ledger.DefaultType, in.txType)
	assert.Equal(t, ledger.MethodCard, in.method)

	d := in.draft()
	require.NotNil(t, d.Amount)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, ledger.MethodCard, *d.Method)

	in.amount = "nope"
	assert.Nil(t, in.draft().Amount)
}

func TestDashboardModel_Load(t *testing.T) {
	m := NewDashboardModel(newTestLedger())

	msg := m.Init()()
	loaded, ok := msg.(dashboardMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)

	next, cmd := m.Update(loaded)
	assert.Nil(t, cmd)

	out := next.(DashboardModel).View()
	assert.Contains(t, out, "70/100")
	assert.Contains(t, out, "Upcoming bills")

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestListModel_LoadAndDelete(t *testing.T) {
	svc := newTestLedger()
	m := NewListModel(svc, nil)

	next, _ := m.Update(m.Init()())
	m = next.(ListModel)
	require.NotEmpty(t, m.txs)

	first := m.txs[0]

	msg := m.deleteCmd(first)()
	saved, ok := msg.(listSaveMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	txs, err := svc.Transactions(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, txs, len(m.txs)-1)
}

func TestActionsModel_Perform(t *testing.T) {
	svc := newTestLedger()
	m := NewActionsModel(svc)

	status, err := m.perform(t.Context(), actionsInput{action: actionSend, recipient: "Rahul", amount: "500"})
	require.NoError(t, err)
	assert.Contains(t, status, "Rahul")

	status, err = m.perform(t.Context(), actionsInput{action: actionPayBill, billID: "b1"})
	require.NoError(t, err)
	assert.Contains(t, status, "Paid")

	status, err = m.perform(t.Context(), actionsInput{action: actionPayBill, billID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "Bill was already paid.", status)

	_, err = m.perform(t.Context(), actionsInput{action: actionVault, direction: ledger.DirectionWithdraw, amount: "99999999"})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	status, err = m.perform(t.Context(), actionsInput{action: actionWallet})
	require.NoError(t, err)
	assert.Contains(t, status, ledger.MockWalletAddress)
}

func TestActionsInput_GoalParams(t *testing.T) {
	type testCase struct {
		name        string
		in          actionsInput
		wantCurrent decimal.Decimal
		wantAPY     bool
		wantErr     string
	}

	tests := []testCase{
		{
			name:        "BlankSavedIsZero",
			in:          actionsInput{goalName: "Bike", goalTarget: "800", goalCurrent: " ", goalDate: "2025-06-01"},
			wantCurrent: decimal.Zero,
		},
		{
			name:        "WithSavedAndAPY",
			in:          actionsInput{goalName: "Bike", goalTarget: "800", goalCurrent: "120.50", goalDate: "2025-06-01", goalAPY: "4"},
			wantCurrent: decimal.RequireFromString("120.50"),
			wantAPY:     true,
		},
		{
			name:    "BadTarget",
			in:      actionsInput{goalName: "Bike", goalTarget: "lots", goalDate: "2025-06-01"},
			wantErr: "parse target amount",
		},
		{
			name:    "BadSaved",
			in:      actionsInput{goalName: "Bike", goalTarget: "800", goalCurrent: "abc", goalDate: "2025-06-01"},
			wantErr: "parse saved amount",
		},
		{
			name:    "BadDeadline",
			in:      actionsInput{goalName: "Bike", goalTarget: "800", goalDate: "next june"},
			wantErr: "parse deadline",
		},
		{
			name:    "BadAPY",
			in:      actionsInput{goalName: "Bike", goalTarget: "800", goalDate: "2025-06-01", goalAPY: "high"},
			wantErr: "parse APY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.in.goalParams()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.wantCurrent.Equal(p.CurrentAmount), "got %s", p.CurrentAmount)
			assert.Equal(t, tt.wantAPY, p.APY != nil)
			assert.Equal(t, 2025, p.Deadline.Year())
		})
	}
}

func TestActionsModel_PerformAddGoal(t *testing.T) {
	svc := newTestLedger()
	m := NewActionsModel(svc)

	before, err := svc.Snapshot(t.Context())
	require.NoError(t, err)

	_, err = m.perform(t.Context(), actionsInput{action: actionAddGoal, goalName: "Bike", goalTarget: "800", goalDate: "not a date"})
	assert.ErrorContains(t, err, "parse deadline")

	status, err := m.perform(t.Context(), actionsInput{action: actionAddGoal, goalName: "Bike", goalTarget: "800", goalDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Contains(t, status, "Bike")

	after, err := svc.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, after.Goals, len(before.Goals)+1)

	var bike ledger.Goal
	for _, g := range after.Goals {
		if g.Name == "Bike" {
			bike = g
		}
	}

	assert.True(t, bike.CurrentAmount.IsZero())
}

func TestPicks(t *testing.T) {
	p := picks{}

	p.toggle(1)
	assert.Equal(t, 1, p.count())

	p.setAll(3, true)
	assert.Equal(t, 3, p.count())

	p.toggle(0)
	p.setAll(2, false)
	assert.Equal(t, 1, p.count())
	assert.True(t, p[2])
}
