package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

const DefaultTimeout = 60 * time.Second

type Client struct {
	model      Model
	timeout    time.Duration
	parseModel string
}

type Option func(*Client)

// WithTimeout bounds every call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithParseModel selects a lighter model for transaction extraction.
func WithParseModel(name string) Option {
	return func(c *Client) { c.parseModel = name }
}

func NewClient(model Model, opts ...Option) *Client {
	c := &Client{model: model, timeout: DefaultTimeout}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Analyze produces the markdown report for s.
func (c *Client) Analyze(ctx context.Context, s ledger.State) (string, error) {
	prompt, err := analysisPrompt(s)
	if err != nil {
		return "", &Failure{Reason: ReasonUnavailable, Err: err}
	}

	reply, err := c.call(ctx, Request{
		System: SystemInstruction,
		Turns:  []Turn{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	return reply.Text, nil
}

// Chat answers message given the prior turns, which normally start with the report as a
// model turn. Cited web sources are appended as a markdown list.
func (c *Client) Chat(ctx context.Context, history []Turn, s ledger.State, message string) (string, error) {
	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, Turn{Role: RoleUser, Content: message})

	reply, err := c.call(ctx, Request{
		System:    chatSystem(s),
		Turns:     turns,
		WebSearch: true,
	})
	if err != nil {
		return "", err
	}

	return withSources(reply.Text, reply.Sources), nil
}

type parsedTransaction struct {
	Merchant string           `json:"merchant"`
	Amount   *decimal.Decimal `json:"amount"`
	Category ledger.Category  `json:"category"`
	Type     ledger.Type      `json:"type"`
	Method   ledger.Method    `json:"method"`
}

// ParseTransaction extracts a draft from a natural-language description. ok is false when the
// text could not be understood; err is only set when the service itself failed.
func (c *Client) ParseTransaction(ctx context.Context, text string, year int) (ledger.Draft, bool, error) {
	if strings.TrimSpace(text) == "" {
		return ledger.Draft{}, false, nil
	}

	reply, err := c.call(ctx, Request{
		Model:  c.parseModel,
		Turns:  []Turn{{Role: RoleUser, Content: parsePrompt(text, year)}},
		Schema: transactionSchema(),
	})
	if err != nil {
		if IsFailure(err, ReasonEmptyResponse) {
			return ledger.Draft{}, false, nil
		}

		return ledger.Draft{}, false, err
	}

	var p parsedTransaction
	if err := json.Unmarshal([]byte(stripFence(reply.Text)), &p); err != nil {
		slog.Debug("unparseable transaction extraction", "error", err)
		return ledger.Draft{}, false, nil
	}

	merchant := strings.TrimSpace(p.Merchant)
	if merchant == "" || p.Amount == nil || !p.Amount.IsPositive() ||
		!p.Category.Valid() || !p.Type.Valid() || !p.Method.Valid() {
		return ledger.Draft{}, false, nil
	}

	d := ledger.Draft{}.
		WithMerchant(merchant).
		WithAmount(*p.Amount).
		WithCategory(p.Category).
		WithType(p.Type).
		WithMethod(p.Method)

	return d, true, nil
}

func (c *Client) call(ctx context.Context, req Request) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.model.Generate(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}

		f := classify(err)
		slog.Warn("advisor call failed", "reason", f.Reason, "error", err)

		return nil, f
	}

	if reply == nil || strings.TrimSpace(reply.Text) == "" {
		return nil, &Failure{Reason: ReasonEmptyResponse}
	}

	return reply, nil
}

func withSources(text string, sources []Source) string {
	var lines []string

	for _, s := range sources {
		if s.URI == "" {
			continue
		}

		lines = append(lines, fmt.Sprintf("* [%s](%s)", s.Title, s.URI))
	}

	if len(lines) == 0 {
		return text
	}

	return text + "\n\n**Sources:**\n" + strings.Join(lines, "\n")
}

// stripFence removes a ```json fence some models wrap around structured output.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
