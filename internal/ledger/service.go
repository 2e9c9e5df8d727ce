package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/finco/internal/events"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidInput      = errors.New("invalid input")

	errAlreadyPaid = errors.New("bill already paid")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// settleGrace bounds a detached settlement beyond its simulated delay.
const settleGrace = 10 * time.Second

// Pending describes a settlement that is still waiting on the simulated network.
type Pending struct {
	Key    string
	Kind   string
	Amount decimal.Decimal
	Since  time.Time
}

type Service struct {
	repo      Repository
	publisher events.Publisher

	settleDelay time.Duration
	now         func() time.Time
	newID       func() string
	newHash     func(digits int) string

	mu  sync.Mutex
	seq uint64

	inflight  singleflight.Group
	pendingMu sync.Mutex
	pending   map[string]Pending
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithSettleDelay(d time.Duration) Option {
	return func(s *Service) { s.settleDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithHashes(newHash func(digits int) string) Option {
	return func(s *Service) { s.newHash = newHash }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.Nop{},
		now:       time.Now,
		newID:     uuid.NewString,
		newHash:   NewHash,
		pending:   make(map[string]Pending),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot returns a private copy of the current state.
func (s *Service) Snapshot(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load ledger: %w", err)
	}

	return st.Clone(), nil
}

// Now is the service clock, exposed so derived views use the same notion of today.
func (s *Service) Now() time.Time {
	return s.now()
}

// Transactions lists the ledger newest first, optionally filtered by a case-insensitive
// match on merchant or category.
func (s *Service) Transactions(ctx context.Context, query string) ([]Transaction, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return st.Transactions, nil
	}

	var out []Transaction

	for _, tx := range st.Transactions {
		if strings.Contains(strings.ToLower(tx.Merchant), q) ||
			strings.Contains(strings.ToLower(string(tx.Category)), q) {
			out = append(out, tx)
		}
	}

	return out, nil
}

func (s *Service) AddTransaction(ctx context.Context, d Draft) (Transaction, error) {
	if d.Amount != nil && !d.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	ev := TransactionAdded{Draft: d, Meta: s.meta(WalletHashDigits)}

	next, err := s.dispatch(ctx, ev, nil)
	if err != nil {
		return Transaction{}, err
	}

	return next.Transactions[0], nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.dispatch(ctx, TransactionDeleted{ID: id}, func(st State) error {
		if _, ok := st.FindTransaction(id); !ok {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}

		return nil
	})

	return err
}

// PayBill settles a bill from the wallet. Paying an already paid bill changes nothing and
// returns a nil transaction.
func (s *Service) PayBill(ctx context.Context, id string) (*Transaction, error) {
	next, err := s.dispatch(ctx, BillPaid{BillID: id, Meta: s.meta(WalletHashDigits)}, func(st State) error {
		b, ok := st.FindBill(id)
		if !ok {
			return fmt.Errorf("bill %s: %w", id, ErrNotFound)
		}

		if b.IsPaid {
			return errAlreadyPaid
		}

		return nil
	})
	if errors.Is(err, errAlreadyPaid) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return new(next.Transactions[0]), nil
}

type GoalParams struct {
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      time.Time
	APY           *decimal.Decimal
}

func (s *Service) AddGoal(ctx context.Context, p GoalParams) (Goal, error) {
	if strings.TrimSpace(p.Name) == "" || p.Deadline.IsZero() {
		return Goal{}, fmt.Errorf("goal needs a name and a deadline: %w", ErrInvalidInput)
	}

	if !p.TargetAmount.IsPositive() || p.CurrentAmount.IsNegative() {
		return Goal{}, ErrInvalidAmount
	}

	g := Goal{
		ID:            s.newID(),
		Name:          strings.TrimSpace(p.Name),
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		Deadline:      Day(p.Deadline),
		APY:           p.APY,
	}

	if _, err := s.dispatch(ctx, GoalAdded{Goal: g}, nil); err != nil {
		return Goal{}, err
	}

	return g, nil
}

func (s *Service) StakeToGoal(ctx context.Context, goalID string, amount decimal.Decimal) (Transaction, error) {
	check := func(st State) error {
		if _, ok := st.FindGoal(goalID); !ok {
			return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
		}

		return requireFunds(st.CurrentBalance, amount)
	}

	if err := s.precheck(ctx, amount, check); err != nil {
		return Transaction{}, err
	}

	p := Pending{Key: fmt.Sprintf("stake:%s:%s", goalID, amount), Kind: "stake", Amount: amount}

	return s.settle(ctx, p, func(ctx context.Context) (Transaction, error) {
		ev := GoalStaked{GoalID: goalID, Amount: amount, Meta: s.meta(ContractHashDigits)}
		return s.dispatchTx(ctx, ev, check)
	})
}

func (s *Service) UpdateIncome(ctx context.Context, income decimal.Decimal) error {
	if income.IsNegative() {
		return ErrInvalidAmount
	}

	_, err := s.dispatch(ctx, IncomeUpdated{Income: income}, nil)

	return err
}

func (s *Service) UpdateBudget(ctx context.Context, category string, limit decimal.Decimal) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("budget category is empty: %w", ErrInvalidInput)
	}

	if limit.IsNegative() {
		return ErrInvalidAmount
	}

	_, err := s.dispatch(ctx, BudgetUpdated{Category: category, Limit: limit}, nil)

	return err
}

func (s *Service) SendP2P(ctx context.Context, recipient string, amount decimal.Decimal) (Transaction, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return Transaction{}, fmt.Errorf("recipient is empty: %w", ErrInvalidInput)
	}

	check := func(st State) error { return requireFunds(st.CurrentBalance, amount) }

	if err := s.precheck(ctx, amount, check); err != nil {
		return Transaction{}, err
	}

	p := Pending{Key: fmt.Sprintf("p2p:%s:%s", recipient, amount), Kind: "p2p", Amount: amount}

	return s.settle(ctx, p, func(ctx context.Context) (Transaction, error) {
		ev := PeerTransferred{Recipient: recipient, Amount: amount, Meta: s.meta(ContractHashDigits)}
		return s.dispatchTx(ctx, ev, check)
	})
}

func (s *Service) MoveVault(ctx context.Context, amount decimal.Decimal, dir Direction) (Transaction, error) {
	if !dir.Valid() {
		return Transaction{}, fmt.Errorf("direction %q: %w", dir, ErrInvalidInput)
	}

	check := func(st State) error {
		if dir == DirectionWithdraw {
			return requireFunds(st.VaultBalance, amount)
		}

		return requireFunds(st.CurrentBalance, amount)
	}

	if err := s.precheck(ctx, amount, check); err != nil {
		return Transaction{}, err
	}

	p := Pending{Key: fmt.Sprintf("vault:%s:%s", dir, amount), Kind: "vault_" + string(dir), Amount: amount}

	return s.settle(ctx, p, func(ctx context.Context) (Transaction, error) {
		ev := VaultMoved{Amount: amount, Direction: dir, Meta: s.meta(ContractHashDigits)}
		return s.dispatchTx(ctx, ev, check)
	})
}

// ConnectWallet links a mock wallet. An empty address uses MockWalletAddress.
func (s *Service) ConnectWallet(ctx context.Context, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		address = MockWalletAddress
	}

	if _, err := s.dispatch(ctx, WalletConnected{Address: address}, nil); err != nil {
		return "", err
	}

	return address, nil
}

func (s *Service) DisconnectWallet(ctx context.Context) error {
	_, err := s.dispatch(ctx, WalletDisconnected{}, nil)
	return err
}

type ImportResult struct {
	Imported  []Transaction
	New       []Transaction
	Conflicts []Conflict
}

type Conflict struct {
	Incoming Transaction
	Existing Transaction
}

// Import adds rows read from a statement. If any row matches an existing transaction on
// date, merchant, amount and type, nothing is applied and the conflicts are returned so the
// caller can confirm with ImportConfirmed.
func (s *Service) Import(ctx context.Context, rows []Transaction) (*ImportResult, error) {
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	var result ImportResult

	check := func(st State) error {
		lookup := make(map[dupKey]Transaction, len(st.Transactions))
		for _, tx := range st.Transactions {
			lookup[keyOf(tx)] = tx
		}

		result = ImportResult{}

		for _, r := range rows {
			if existing, found := lookup[keyOf(r)]; found {
				result.Conflicts = append(result.Conflicts, Conflict{Incoming: r, Existing: existing})
				continue
			}

			result.New = append(result.New, r)
		}

		if len(result.Conflicts) > 0 {
			return errConflicts
		}

		return nil
	}

	imported := s.withIDs(rows)

	_, err := s.dispatch(ctx, TransactionsImported{Transactions: imported}, check)
	if errors.Is(err, errConflicts) {
		return &result, nil
	}

	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: imported}, nil
}

// ImportConfirmed applies rows without duplicate detection.
func (s *Service) ImportConfirmed(ctx context.Context, rows []Transaction) ([]Transaction, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	imported := s.withIDs(rows)
	if _, err := s.dispatch(ctx, TransactionsImported{Transactions: imported}, nil); err != nil {
		return nil, err
	}

	return imported, nil
}

// Pending lists in-flight settlements, oldest first.
func (s *Service) Pending() []Pending {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	out := make([]Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Since.Before(out[j].Since) })

	return out
}

var errConflicts = errors.New("import conflicts")

type dupKey struct {
	Date     string
	Merchant string
	Amount   string
	Type     Type
}

func keyOf(tx Transaction) dupKey {
	return dupKey{
		Date:     tx.Date.Format(time.DateOnly),
		Merchant: strings.ToLower(tx.Merchant),
		Amount:   tx.Amount.String(),
		Type:     tx.Type,
	}
}

func (s *Service) withIDs(rows []Transaction) []Transaction {
	out := make([]Transaction, len(rows))
	for i, r := range rows {
		r.ID = s.newID()
		out[i] = r
	}

	return out
}

func (s *Service) meta(hashDigits int) Meta {
	return Meta{ID: s.newID(), Date: s.now(), Hash: s.newHash(hashDigits)}
}

// dispatch applies ev to the stored state as one atomic read-modify-write. check runs
// against the current state first and aborts the write when it fails.
func (s *Service) dispatch(ctx context.Context, ev Event, check func(State) error) (State, error) {
	s.mu.Lock()

	cur, err := s.repo.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return State{}, fmt.Errorf("load ledger: %w", err)
	}

	if check != nil {
		if err := check(cur); err != nil {
			s.mu.Unlock()
			return State{}, err
		}
	}

	next := ev.Apply(cur)
	if err := s.repo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return State{}, fmt.Errorf("save ledger: %w", err)
	}

	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.publish(ctx, ev, seq)

	return next.Clone(), nil
}

func (s *Service) dispatchTx(ctx context.Context, ev Event, check func(State) error) (Transaction, error) {
	next, err := s.dispatch(ctx, ev, check)
	if err != nil {
		return Transaction{}, err
	}

	return next.Transactions[0], nil
}

func (s *Service) publish(ctx context.Context, ev Event, seq uint64) {
	msg, err := events.NewMessage(ev.Name(), seq, ev)
	if err != nil {
		slog.Error("failed to encode ledger event", "event", ev.Name(), "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		slog.Warn("failed to publish ledger event", "event", ev.Name(), "error", err)
	}
}

// precheck validates amount and runs check against the current state before a settlement
// starts, so obviously invalid requests fail without waiting.
func (s *Service) precheck(ctx context.Context, amount decimal.Decimal, check func(State) error) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	st, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	return check(st)
}

// settle runs fn after the simulated network delay. Concurrent calls with the same key
// share one settlement and its result. The settlement is detached from the callers'
// contexts: a caller that gives up stops waiting, but the settlement still completes for
// everyone else within settleGrace past the delay.
func (s *Service) settle(ctx context.Context, p Pending, fn func(ctx context.Context) (Transaction, error)) (Transaction, error) {
	ch := s.inflight.DoChan(p.Key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settleDelay+settleGrace)
		defer cancel()

		p.Since = s.now()
		s.track(p)
		defer s.untrack(p.Key)

		if err := s.wait(sctx); err != nil {
			return Transaction{}, err
		}

		return fn(sctx)
	})

	select {
	case <-ctx.Done():
		return Transaction{}, fmt.Errorf("stopped waiting for settlement: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			slog.Debug("joined in-flight settlement", "key", p.Key)
		}

		if res.Err != nil {
			return Transaction{}, res.Err
		}

		return res.Val.(Transaction), nil
	}
}

func (s *Service) wait(ctx context.Context) error {
	if s.settleDelay <= 0 {
		return nil
	}

	t := time.NewTimer(s.settleDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("settlement cancelled: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

func (s *Service) track(p Pending) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	s.pending[p.Key] = p
}

func (s *Service) untrack(key string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	delete(s.pending, key)
}

func requireFunds(available, amount decimal.Decimal) error {
	if amount.GreaterThan(available) {
		return fmt.Errorf("need %s, have %s: %w", amount, available, ErrInsufficientFunds)
	}

	return nil
}
