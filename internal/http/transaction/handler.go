package transaction

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/export"
	"github.com/MrJamesThe3rd/finco/internal/http/respond"
	"github.com/MrJamesThe3rd/finco/internal/importer"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

const maxUpload = 10 << 20

type Handler struct {
	svc       *ledger.Service
	exportSvc *export.Service
	importSvc *importer.Service
}

func NewHandler(svc *ledger.Service, exportSvc *export.Service, importSvc *importer.Service) *Handler {
	return &Handler{svc: svc, exportSvc: exportSvc, importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
	r.Get("/export", h.export)
	r.Post("/import", h.importCSV)
	r.Post("/import/confirm", h.confirmImport)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Transactions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(txs))
}

// createTransactionRequest mirrors ledger.Draft: omitted fields take the ledger defaults.
type createTransactionRequest struct {
	Merchant *string          `json:"merchant" validate:"omitempty,max=120"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Category *ledger.Category `json:"category"`
	Type     *ledger.Type     `json:"type"`
	Method   *ledger.Method   `json:"method"`
}

func (req createTransactionRequest) draft() (ledger.Draft, error) {
	switch {
	case req.Category != nil && !req.Category.Valid():
		return ledger.Draft{}, fmt.Errorf("unknown category %q", *req.Category)
	case req.Type != nil && !req.Type.Valid():
		return ledger.Draft{}, fmt.Errorf("unknown type %q", *req.Type)
	case req.Method != nil && !req.Method.Valid():
		return ledger.Draft{}, fmt.Errorf("unknown method %q", *req.Method)
	}

	return ledger.Draft{
		Merchant: req.Merchant,
		Amount:   req.Amount,
		Category: req.Category,
		Type:     req.Type,
		Method:   req.Method,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	d, err := req.draft()
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	tx, err := h.svc.AddTransaction(r.Context(), d)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	opts := export.Options{
		Query: r.URL.Query().Get("q"),
		BOM:   r.URL.Query().Get("bom") == "true",
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(h.svc.Now())))

	n, err := h.exportSvc.Export(r.Context(), w, opts)
	if err != nil {
		// Headers are already out; the client sees a truncated file.
		slog.Error("failed to export transactions", "error", err)
		return
	}

	slog.Debug("exported transactions", "rows", n)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Fail(w, http.StatusBadRequest, "failed to parse form: "+err.Error(), "invalid_input")
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format != "" && !format.Valid() {
		respond.Fail(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format), "invalid_input")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "file field is required", "invalid_input")
		return
	}
	defer file.Close()

	rows, err := h.importSvc.Import(format, file)
	if err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, err.Error(), "unreadable_file")
		return
	}

	result, err := h.svc.Import(r.Context(), rows)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		respond.JSON(w, http.StatusConflict, toConflictResponse(result))
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

type confirmRequest struct {
	Transactions []rowDTO `json:"transactions" validate:"required,dive"`
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	rows := make([]ledger.Transaction, 0, len(req.Transactions))
	for i, row := range req.Transactions {
		tx, err := row.toTransaction()
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, fmt.Sprintf("transaction %d: %v", i, err), "invalid_input")
			return
		}

		if tx.Amount.IsNegative() {
			respond.Error(w, fmt.Errorf("transaction %d: %w", i, ledger.ErrInvalidAmount))
			return
		}

		rows = append(rows, tx)
	}

	txs, err := h.svc.ImportConfirmed(r.Context(), rows)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}
