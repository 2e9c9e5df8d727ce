package transfer

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/http/respond"
	"github.com/MrJamesThe3rd/finco/internal/http/transaction"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// Handler serves the operations that go through a simulated settlement delay.
type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transfers", h.sendP2P)
	r.Post("/vault", h.moveVault)
	r.Get("/pending", h.pending)
}

type p2pRequest struct {
	Recipient string           `json:"recipient" validate:"required,max=120"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
}

func (h *Handler) sendP2P(w http.ResponseWriter, r *http.Request) {
	var req p2pRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	tx, err := h.svc.SendP2P(r.Context(), req.Recipient, *req.Amount)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, transaction.ToResponse(tx))
}

type vaultRequest struct {
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Direction ledger.Direction `json:"direction" validate:"required,oneof=deposit withdraw"`
}

func (h *Handler) moveVault(w http.ResponseWriter, r *http.Request) {
	var req vaultRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	tx, err := h.svc.MoveVault(r.Context(), *req.Amount, req.Direction)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, transaction.ToResponse(tx))
}

type pendingResponse struct {
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
	Since  time.Time       `json:"since"`
}

func (h *Handler) pending(w http.ResponseWriter, _ *http.Request) {
	pending := h.svc.Pending()

	resp := make([]pendingResponse, len(pending))
	for i, p := range pending {
		resp[i] = pendingResponse{Kind: p.Kind, Amount: p.Amount, Since: p.Since}
	}

	respond.JSON(w, http.StatusOK, resp)
}
