package ledger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/analytics"
	"github.com/MrJamesThe3rd/finco/internal/http/respond"
	"github.com/MrJamesThe3rd/finco/internal/http/transaction"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/income", h.updateIncome)
	r.Put("/budgets/{category}", h.updateBudget)
	r.Put("/wallet", h.connectWallet)
	r.Delete("/wallet", h.disconnectWallet)
}

func (h *Handler) BillRoutes(r chi.Router) {
	r.Post("/{id}/pay", h.payBill)
}

func (h *Handler) GoalRoutes(r chi.Router) {
	r.Post("/", h.addGoal)
	r.Post("/{id}/stake", h.stake)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toLedgerResponse(st))
}

// Dashboard serves every derived analytics view in one document.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDashboardResponse(analytics.Build(st, h.svc.Now())))
}

type amountRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

func (h *Handler) updateIncome(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	if err := h.svc.UpdateIncome(r.Context(), *req.Amount); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateBudget(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	if err := h.svc.UpdateBudget(r.Context(), chi.URLParam(r, "category"), *req.Amount); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type walletRequest struct {
	Address string `json:"address" validate:"omitempty,max=128"`
}

type walletResponse struct {
	Address string `json:"address"`
}

func (h *Handler) connectWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
			return
		}
	}

	addr, err := h.svc.ConnectWallet(r.Context(), req.Address)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, walletResponse{Address: addr})
}

func (h *Handler) disconnectWallet(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DisconnectWallet(r.Context()); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type payBillResponse struct {
	AlreadyPaid bool                  `json:"already_paid"`
	Transaction *transaction.Response `json:"transaction,omitempty"`
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.PayBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	if tx == nil {
		respond.JSON(w, http.StatusOK, payBillResponse{AlreadyPaid: true})
		return
	}

	respond.JSON(w, http.StatusCreated, payBillResponse{Transaction: new(transaction.ToResponse(*tx))})
}

type createGoalRequest struct {
	Name          string           `json:"name" validate:"required,max=80"`
	TargetAmount  *decimal.Decimal `json:"target_amount" validate:"required"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Deadline      string           `json:"deadline" validate:"required,datetime=2006-01-02"`
	APY           *decimal.Decimal `json:"apy"`
}

func (h *Handler) addGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	deadline, err := time.ParseInLocation(time.DateOnly, req.Deadline, time.Local)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid deadline", "invalid_input")
		return
	}

	params := ledger.GoalParams{
		Name:         req.Name,
		TargetAmount: *req.TargetAmount,
		Deadline:     deadline,
		APY:          req.APY,
	}

	if req.CurrentAmount != nil {
		params.CurrentAmount = *req.CurrentAmount
	}

	g, err := h.svc.AddGoal(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toGoal(g))
}

func (h *Handler) stake(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	tx, err := h.svc.StakeToGoal(r.Context(), chi.URLParam(r, "id"), *req.Amount)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, transaction.ToResponse(tx))
}
