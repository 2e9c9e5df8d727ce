package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/advisor"
	"github.com/MrJamesThe3rd/finco/internal/http/respond"
	"github.com/MrJamesThe3rd/finco/internal/http/transaction"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Parser interface {
	ParseTransaction(ctx context.Context, text string, year int) (ledger.Draft, bool, error)
}

type Handler struct {
	svc     *ledger.Service
	session *advisor.Session
	parser  Parser
}

func NewHandler(svc *ledger.Service, session *advisor.Session, parser Parser) *Handler {
	return &Handler{svc: svc, session: session, parser: parser}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/report", h.generate)
	r.Get("/report", h.view)
	r.Post("/chat", h.chat)
	r.Post("/parse", h.parse)
}

type reportResponse struct {
	Report string `json:"report"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	report, err := h.session.Generate(r.Context(), st)
	if err != nil {
		h.fail(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, reportResponse{Report: report})
}

type turnResponse struct {
	Role    advisor.Role `json:"role"`
	Content string       `json:"content"`
}

type viewResponse struct {
	Report      string              `json:"report"`
	ReportState advisor.ReportState `json:"report_state"`
	ReportError string              `json:"report_error,omitempty"`
	ChatState   advisor.ChatState   `json:"chat_state"`
	ChatError   string              `json:"chat_error,omitempty"`
	History     []turnResponse      `json:"history"`
}

func (h *Handler) view(w http.ResponseWriter, _ *http.Request) {
	v := h.session.View()

	resp := viewResponse{
		Report:      v.Report,
		ReportState: v.ReportState,
		ReportError: advisor.FallbackMessage(v.ReportErr),
		ChatState:   v.ChatState,
		ChatError:   advisor.FallbackMessage(v.ChatErr),
		History:     make([]turnResponse, len(v.History)),
	}

	for i, t := range v.History {
		resp.History[i] = turnResponse(t)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	st, err := h.svc.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	reply, err := h.session.Send(r.Context(), st, req.Message)
	if err != nil {
		h.fail(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type parseRequest struct {
	Text string `json:"text" validate:"required,max=500"`
	// Apply records the parsed transaction instead of only returning it.
	Apply bool `json:"apply"`
}

type draftResponse struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Category ledger.Category `json:"category"`
	Type     ledger.Type     `json:"type"`
	Method   ledger.Method   `json:"method"`
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	d, ok, err := h.parser.ParseTransaction(r.Context(), strings.TrimSpace(req.Text), h.svc.Now().Year())
	if err != nil {
		h.fail(w, err)
		return
	}

	if !ok {
		respond.Fail(w, http.StatusUnprocessableEntity, advisor.NotUnderstood, "not_understood")
		return
	}

	if req.Apply {
		tx, err := h.svc.AddTransaction(r.Context(), d)
		if err != nil {
			respond.Error(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, transaction.ToResponse(tx))

		return
	}

	respond.JSON(w, http.StatusOK, draftResponse{
		Merchant: *d.Merchant,
		Amount:   *d.Amount,
		Category: *d.Category,
		Type:     *d.Type,
		Method:   *d.Method,
	})
}

// fail renders session and advisor errors. Advisor failures carry the user-facing fallback
// text rather than the upstream error.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrEmptyMessage):
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	case errors.Is(err, advisor.ErrBusy):
		respond.Fail(w, http.StatusConflict, err.Error(), "busy")
		return
	case errors.Is(err, advisor.ErrNoReport):
		respond.Fail(w, http.StatusConflict, err.Error(), "no_report")
		return
	case errors.Is(err, advisor.ErrStale):
		respond.Fail(w, http.StatusConflict, err.Error(), "stale")
		return
	}

	var f *advisor.Failure
	if !errors.As(err, &f) {
		respond.Error(w, err)
		return
	}

	status := http.StatusBadGateway

	switch f.Reason {
	case advisor.ReasonTimeout:
		status = http.StatusGatewayTimeout
	case advisor.ReasonMissingCredential:
		status = http.StatusServiceUnavailable
	}

	respond.Fail(w, status, advisor.FallbackMessage(err), string(f.Reason))
}
