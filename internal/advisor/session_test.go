package advisor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/advisor"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// fakeAdvisor answers from queued results; a non-nil gate blocks each call until released.
type fakeAdvisor struct {
	mu      sync.Mutex
	reports []result
	replies []result
	gate    chan struct{}
	started chan struct{}
	history [][]advisor.Turn
}

type result struct {
	text string
	err  error
}

func (f *fakeAdvisor) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}

	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeAdvisor) Analyze(context.Context, ledger.State) (string, error) {
	f.mu.Lock()
	r := f.reports[0]
	f.reports = f.reports[1:]
	f.mu.Unlock()

	f.wait()

	return r.text, r.err
}

func (f *fakeAdvisor) Chat(_ context.Context, history []advisor.Turn, _ ledger.State, _ string) (string, error) {
	f.mu.Lock()
	f.history = append(f.history, history)
	r := f.replies[0]
	f.replies = f.replies[1:]
	f.mu.Unlock()

	f.wait()

	return r.text, r.err
}

func TestSession_ReportThenChat(t *testing.T) {
	fake := &fakeAdvisor{
		reports: []result{{text: "report"}},
		replies: []result{{text: "answer 1"}, {text: "answer 2"}},
	}
	s := advisor.NewSession(fake)
	ctx := context.Background()

	assert.Equal(t, advisor.ReportIdle, s.View().ReportState)

	_, err := s.Send(ctx, ledger.Seed(), "hi")
	assert.ErrorIs(t, err, advisor.ErrNoReport)

	report, err := s.Generate(ctx, ledger.Seed())
	require.NoError(t, err)
	assert.Equal(t, "report", report)
	assert.Equal(t, advisor.ReportReady, s.View().ReportState)

	_, err = s.Send(ctx, ledger.Seed(), "first")
	require.NoError(t, err)
	_, err = s.Send(ctx, ledger.Seed(), "second")
	require.NoError(t, err)

	// the report is always the first turn the model sees
	require.Len(t, fake.history, 2)
	assert.Equal(t, []advisor.Turn{{Role: advisor.RoleModel, Content: "report"}}, fake.history[0])
	assert.Equal(t, []advisor.Turn{
		{Role: advisor.RoleModel, Content: "report"},
		{Role: advisor.RoleUser, Content: "first"},
		{Role: advisor.RoleModel, Content: "answer 1"},
	}, fake.history[1])

	v := s.View()
	assert.Len(t, v.History, 4)
	assert.Equal(t, advisor.ChatIdle, v.ChatState)

	_, err = s.Send(ctx, ledger.Seed(), "  ")
	assert.ErrorIs(t, err, advisor.ErrEmptyMessage)
}

func TestSession_RegenerateResetsChat(t *testing.T) {
	fake := &fakeAdvisor{
		reports: []result{{text: "r1"}, {text: "r2"}},
		replies: []result{{text: "a1"}},
	}
	s := advisor.NewSession(fake)
	ctx := context.Background()

	_, err := s.Generate(ctx, ledger.Seed())
	require.NoError(t, err)
	_, err = s.Send(ctx, ledger.Seed(), "q")
	require.NoError(t, err)

	_, err = s.Generate(ctx, ledger.Seed())
	require.NoError(t, err)

	v := s.View()
	assert.Equal(t, "r2", v.Report)
	assert.Empty(t, v.History)
}

func TestSession_Failures(t *testing.T) {
	boom := &advisor.Failure{Reason: advisor.ReasonUnavailable}
	fake := &fakeAdvisor{
		reports: []result{{err: boom}, {text: "ok"}},
		replies: []result{{err: boom}, {text: "fine"}},
	}
	s := advisor.NewSession(fake)
	ctx := context.Background()

	_, err := s.Generate(ctx, ledger.Seed())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, advisor.ReportFailed, s.View().ReportState)
	assert.Equal(t, boom, s.View().ReportErr)

	_, err = s.Generate(ctx, ledger.Seed())
	require.NoError(t, err)

	_, err = s.Send(ctx, ledger.Seed(), "q")
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, advisor.ChatFailed, s.View().ChatState)

	// a failed turn can be retried
	got, err := s.Send(ctx, ledger.Seed(), "q again")
	require.NoError(t, err)
	assert.Equal(t, "fine", got)
	assert.Equal(t, advisor.ChatIdle, s.View().ChatState)
}

func TestSession_BusyWhileSending(t *testing.T) {
	fake := &fakeAdvisor{
		reports: []result{{text: "report"}},
		replies: []result{{text: "slow"}},
	}
	s := advisor.NewSession(fake)
	ctx := context.Background()

	_, err := s.Generate(ctx, ledger.Seed())
	require.NoError(t, err)

	fake.gate = make(chan struct{})
	fake.started = make(chan struct{}, 1)

	done := make(chan error, 1)

	go func() {
		_, err := s.Send(ctx, ledger.Seed(), "first")
		done <- err
	}()

	select {
	case <-fake.started:
	case <-time.After(time.Second):
		t.Fatal("chat never started")
	}

	assert.Equal(t, advisor.ChatSending, s.View().ChatState)

	_, err = s.Send(ctx, ledger.Seed(), "second")
	assert.ErrorIs(t, err, advisor.ErrBusy)

	close(fake.gate)
	assert.NoError(t, <-done)
}

func TestSession_StaleReportDiscarded(t *testing.T) {
	fake := &fakeAdvisor{
		reports: []result{{text: "old"}, {text: "new"}},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	s := advisor.NewSession(fake)
	ctx := context.Background()

	oldDone := make(chan error, 1)

	go func() {
		_, err := s.Generate(ctx, ledger.Seed())
		oldDone <- err
	}()

	<-fake.started

	newDone := make(chan error, 1)

	go func() {
		_, err := s.Generate(ctx, ledger.Seed())
		newDone <- err
	}()

	<-fake.started

	fake.gate <- struct{}{}
	fake.gate <- struct{}{}

	errs := []error{<-oldDone, <-newDone}
	assert.Contains(t, errs, advisor.ErrStale)
	assert.Equal(t, advisor.ReportReady, s.View().ReportState)
}
