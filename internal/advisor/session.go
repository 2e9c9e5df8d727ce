package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

var (
	ErrBusy         = errors.New("a chat message is already being sent")
	ErrNoReport     = errors.New("no report to chat about")
	ErrStale        = errors.New("result superseded by a newer report request")
	ErrEmptyMessage = errors.New("message is empty")
)

// Advisor is the part of Client a Session needs.
type Advisor interface {
	Analyze(ctx context.Context, s ledger.State) (string, error)
	Chat(ctx context.Context, history []Turn, s ledger.State, message string) (string, error)
}

type ReportState string

const (
	ReportIdle       ReportState = "idle"
	ReportRequesting ReportState = "requesting"
	ReportReady      ReportState = "report_ready"
	ReportFailed     ReportState = "failed"
)

type ChatState string

const (
	ChatIdle    ChatState = "idle"
	ChatSending ChatState = "sending"
	ChatFailed  ChatState = "failed"
)

// View is a consistent copy of a Session at one instant.
type View struct {
	Report      string
	ReportState ReportState
	ReportErr   error
	ChatState   ChatState
	ChatErr     error
	History     []Turn
}

// Session drives one advisor dialog: a report followed by any number of chat turns.
// Requesting a new report clears the chat and makes any older in-flight result stale.
type Session struct {
	advisor Advisor

	mu          sync.Mutex
	generation  uint64
	report      string
	reportState ReportState
	reportErr   error
	chatState   ChatState
	chatErr     error
	history     []Turn
}

func NewSession(a Advisor) *Session {
	return &Session{advisor: a, reportState: ReportIdle, chatState: ChatIdle}
}

// Generate requests a fresh report. If another Generate starts before this one returns, this
// result is dropped and ErrStale is returned.
func (s *Session) Generate(ctx context.Context, st ledger.State) (string, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.reportState = ReportRequesting
	s.reportErr = nil
	s.report = ""
	s.history = nil
	s.chatState = ChatIdle
	s.chatErr = nil
	s.mu.Unlock()

	report, err := s.advisor.Analyze(ctx, st)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return "", ErrStale
	}

	if err != nil {
		s.reportState = ReportFailed
		s.reportErr = err

		return "", err
	}

	s.reportState = ReportReady
	s.report = report

	return report, nil
}

// Send asks a follow-up question about the current report. Only one message may be in
// flight; a concurrent Send gets ErrBusy.
func (s *Session) Send(ctx context.Context, st ledger.State, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()

	switch {
	case s.reportState != ReportReady:
		s.mu.Unlock()
		return "", ErrNoReport
	case s.chatState == ChatSending:
		s.mu.Unlock()
		return "", ErrBusy
	}

	gen := s.generation
	prior := make([]Turn, 0, len(s.history)+1)
	prior = append(prior, Turn{Role: RoleModel, Content: s.report})
	prior = append(prior, s.history...)

	s.history = append(s.history, Turn{Role: RoleUser, Content: message})
	s.chatState = ChatSending
	s.chatErr = nil
	s.mu.Unlock()

	reply, err := s.advisor.Chat(ctx, prior, st, message)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return "", ErrStale
	}

	if err != nil {
		s.chatState = ChatFailed
		s.chatErr = err

		return "", err
	}

	s.history = append(s.history, Turn{Role: RoleModel, Content: reply})
	s.chatState = ChatIdle

	return reply, nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		Report:      s.report,
		ReportState: s.reportState,
		ReportErr:   s.reportErr,
		ChatState:   s.chatState,
		ChatErr:     s.chatErr,
		History:     append([]Turn(nil), s.history...),
	}
}
