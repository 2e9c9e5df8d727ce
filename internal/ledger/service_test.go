package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finco/internal/events"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/ledger/store"
)

type recorder struct {
	mu   sync.Mutex
	msgs []*events.Message
	err  error
}

func (r *recorder) Publish(_ context.Context, msg *events.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.msgs = append(r.msgs, msg)

	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Name
	}

	return out
}

func newService(opts ...ledger.Option) *ledger.Service {
	var n atomic.Int64

	base := []ledger.Option{
		ledger.WithClock(func() time.Time { return now }),
		ledger.WithIDs(func() string { return fmt.Sprintf("id-%d", n.Add(1)) }),
		ledger.WithHashes(func(digits int) string { return fmt.Sprintf("0x%0*d", digits, 0) }),
	}

	return ledger.NewService(store.New(ledger.Seed()), append(base, opts...)...)
}

func TestService_AddTransaction(t *testing.T) {
	pub := &recorder{}
	svc := newService(ledger.WithPublisher(pub))
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, ledger.Draft{}.WithAmount(dec(450)).WithCategory(ledger.CategoryFood))
	require.NoError(t, err)
	assert.Equal(t, "id-1", tx.ID)
	assert.Equal(t, ledger.CategoryFood, tx.Category)

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, dec(24050).Equal(st.CurrentBalance))
	assert.Len(t, st.Transactions, 15)
	assert.Equal(t, int64(260), st.FinTokens)

	assert.Equal(t, []string{"transaction.added"}, pub.names())
	assert.Equal(t, uint64(1), pub.msgs[0].Sequence)

	_, err = svc.AddTransaction(ctx, ledger.Draft{}.WithAmount(dec(-1)))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.AddTransaction(ctx, ledger.Draft{}.WithAmount(decimal.Zero))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	st, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Transactions, 15)
	assert.Equal(t, int64(260), st.FinTokens)
	assert.Len(t, pub.msgs, 1)
}

func TestService_WalletHashWidth(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.ConnectWallet(ctx, "")
	require.NoError(t, err)

	tx, err := svc.AddTransaction(ctx, ledger.Draft{}.WithAmount(dec(10)))
	require.NoError(t, err)
	assert.Len(t, tx.TxHash, 2+ledger.WalletHashDigits)

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.MockWalletAddress, *st.WalletAddress)
}

func TestService_PublishFailureDoesNotRollBack(t *testing.T) {
	svc := newService(ledger.WithPublisher(&recorder{err: errors.New("broker down")}))
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, ledger.Draft{}.WithAmount(dec(100)))
	require.NoError(t, err)

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, dec(24400).Equal(st.CurrentBalance))
}

func TestService_DeleteTransaction(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	require.NoError(t, svc.DeleteTransaction(ctx, "1"))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, "1"), ledger.ErrNotFound)
}

func TestService_PayBill(t *testing.T) {
	pub := &recorder{}
	svc := newService(ledger.WithPublisher(pub))
	ctx := context.Background()

	tx, err := svc.PayBill(ctx, "b3")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "Internet", tx.Merchant)

	again, err := svc.PayBill(ctx, "b3")
	require.NoError(t, err)
	assert.Nil(t, again)

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, dec(24500-999).Equal(st.CurrentBalance))

	_, err = svc.PayBill(ctx, "b42")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	assert.Equal(t, []string{"bill.paid"}, pub.names())

	_, err = svc.AddTransaction(ctx, ledger.Draft{}.WithAmount(dec(100)))
	require.NoError(t, err)

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, uint64(2), pub.msgs[1].Sequence, "repeat payment must not consume a sequence number")
}

func TestService_StakeToGoal(t *testing.T) {
	type args struct {
		goalID string
		amount decimal.Decimal
	}

	type testCase struct {
		name    string
		args    args
		wantErr error
	}

	tests := []testCase{
		{name: "Success", args: args{goalID: "g1", amount: dec(5000)}},
		{name: "ZeroAmount", args: args{goalID: "g1", amount: decimal.Zero}, wantErr: ledger.ErrInvalidAmount},
		{name: "OverBalance", args: args{goalID: "g1", amount: dec(24501)}, wantErr: ledger.ErrInsufficientFunds},
		{name: "UnknownGoal", args: args{goalID: "nope", amount: dec(10)}, wantErr: ledger.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()
			ctx := context.Background()

			tx, err := svc.StakeToGoal(ctx, tt.args.goalID, tt.args.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, tx.TxHash, 2+ledger.ContractHashDigits)

			st, err := svc.Snapshot(ctx)
			require.NoError(t, err)

			g, _ := st.FindGoal(tt.args.goalID)
			assert.True(t, dec(50000).Equal(g.CurrentAmount))
			assert.Equal(t, int64(300), st.FinTokens)
		})
	}
}

func TestService_SettlementCollapsesDuplicates(t *testing.T) {
	svc := newService(ledger.WithSettleDelay(50 * time.Millisecond))
	ctx := context.Background()

	var wg sync.WaitGroup

	results := make([]ledger.Transaction, 3)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			tx, err := svc.SendP2P(ctx, "Asha", dec(500))
			assert.NoError(t, err)

			results[i] = tx
		}()
	}

	require.Eventually(t, func() bool { return len(svc.Pending()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "p2p", svc.Pending()[0].Kind)

	wg.Wait()

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.True(t, dec(24000).Equal(st.CurrentBalance), "one transfer applied, got %s", st.CurrentBalance)
	assert.Equal(t, results[0].ID, results[1].ID)
	assert.Equal(t, results[0].ID, results[2].ID)
	assert.Empty(t, svc.Pending())
}

func TestService_SettlementOutlivesCancelledCaller(t *testing.T) {
	svc := newService(ledger.WithSettleDelay(50 * time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		assert.Eventually(t, func() bool { return len(svc.Pending()) == 1 }, time.Second, time.Millisecond)
		cancel()
	}()

	_, err := svc.MoveVault(ctx, dec(100), ledger.DirectionDeposit)
	assert.ErrorIs(t, err, context.Canceled)

	require.Eventually(t, func() bool { return len(svc.Pending()) == 0 }, time.Second, time.Millisecond)

	st, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, dec(24400).Equal(st.CurrentBalance), "got %s", st.CurrentBalance)
}

func TestService_SettlementSurvivesOneCancelledCaller(t *testing.T) {
	svc := newService(ledger.WithSettleDelay(100 * time.Millisecond))

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var (
		wg         sync.WaitGroup
		shortErr   error
		patientTx  ledger.Transaction
		patientErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		_, shortErr = svc.SendP2P(short, "Asha", dec(500))
	}()

	go func() {
		defer wg.Done()

		patientTx, patientErr = svc.SendP2P(context.Background(), "Asha", dec(500))
	}()

	wg.Wait()

	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)
	require.NoError(t, patientErr)
	assert.NotEmpty(t, patientTx.ID)

	st, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, dec(24000).Equal(st.CurrentBalance), "one transfer applied, got %s", st.CurrentBalance)
	assert.Empty(t, svc.Pending())
}

func TestService_MoveVault(t *testing.T) {
	type testCase struct {
		name    string
		amount  int64
		dir     ledger.Direction
		wantErr error
	}

	tests := []testCase{
		{name: "Deposit", amount: 1000, dir: ledger.DirectionDeposit},
		{name: "Withdraw", amount: 150000, dir: ledger.DirectionWithdraw},
		{name: "DepositOverBalance", amount: 30000, dir: ledger.DirectionDeposit, wantErr: ledger.ErrInsufficientFunds},
		{name: "WithdrawOverVault", amount: 150001, dir: ledger.DirectionWithdraw, wantErr: ledger.ErrInsufficientFunds},
		{name: "BadDirection", amount: 1, dir: "up", wantErr: ledger.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()

			_, err := svc.MoveVault(context.Background(), dec(tt.amount), tt.dir)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_AddGoal(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	g, err := svc.AddGoal(ctx, ledger.GoalParams{
		Name:         "New Laptop",
		TargetAmount: dec(90000),
		Deadline:     now.AddDate(0, 6, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", g.ID)

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Goals, 3)

	_, err = svc.AddGoal(ctx, ledger.GoalParams{Name: "No deadline", TargetAmount: dec(1)})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.AddGoal(ctx, ledger.GoalParams{Name: "Zero", Deadline: now})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestService_UpdateIncomeAndBudget(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	require.NoError(t, svc.UpdateIncome(ctx, dec(100000)))
	require.NoError(t, svc.UpdateBudget(ctx, "Health", dec(1500)))
	assert.ErrorIs(t, svc.UpdateIncome(ctx, dec(-1)), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, svc.UpdateBudget(ctx, " ", dec(1)), ledger.ErrInvalidInput)

	st, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, dec(100000).Equal(st.MonthlyIncome))
	assert.True(t, dec(1500).Equal(st.Budgets["Health"]))
}

func TestService_Transactions(t *testing.T) {
	svc := newService()

	got, err := svc.Transactions(context.Background(), "FOOD")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = svc.Transactions(context.Background(), "uber")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2023, 10, 25, 0, 0, 0, 0, time.Local)

	dup := ledger.Transaction{Date: day, Merchant: "swiggy", Amount: decimal.RequireFromString("450.00"), Category: ledger.CategoryFood, Type: ledger.TypeDebit, Method: ledger.MethodUPI}
	fresh := ledger.Transaction{Date: day, Merchant: "Dunzo", Amount: dec(120), Category: ledger.CategoryShopping, Type: ledger.TypeDebit, Method: ledger.MethodUPI}

	t.Run("Conflicts", func(t *testing.T) {
		svc := newService()

		result, err := svc.Import(ctx, []ledger.Transaction{dup, fresh})
		require.NoError(t, err)
		assert.Empty(t, result.Imported)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, "1", result.Conflicts[0].Existing.ID)
		assert.Len(t, result.New, 1)

		st, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, st.Transactions, 14)
	})

	t.Run("NoConflicts", func(t *testing.T) {
		svc := newService()

		result, err := svc.Import(ctx, []ledger.Transaction{fresh})
		require.NoError(t, err)
		require.Len(t, result.Imported, 1)
		assert.NotEmpty(t, result.Imported[0].ID)

		st, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, dec(24380).Equal(st.CurrentBalance))
	})

	t.Run("Confirmed", func(t *testing.T) {
		svc := newService()

		imported, err := svc.ImportConfirmed(ctx, []ledger.Transaction{dup, fresh})
		require.NoError(t, err)
		assert.Len(t, imported, 2)

		st, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, st.Transactions, 16)
	})
}

func TestService_RepositoryErrors(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *ledger.MockRepository)
	}

	tests := []testCase{
		{
			name: "LoadError",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().Load(gomock.Any()).Return(ledger.State{}, errors.New("load error"))
			},
		},
		{
			name: "SaveError",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().Load(gomock.Any()).Return(ledger.Seed(), nil)
				m.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("save error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := ledger.NewService(repo)
			_, err := svc.AddTransaction(context.Background(), ledger.Draft{})

			assert.Error(t, err)
		})
	}
}
