package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Response struct {
	ID          string             `json:"id"`
	Date        string             `json:"date"`
	Merchant    string             `json:"merchant"`
	Amount      decimal.Decimal    `json:"amount"`
	Category    ledger.Category    `json:"category"`
	Type        ledger.Type        `json:"type"`
	Method      ledger.Method      `json:"method"`
	TxHash      string             `json:"tx_hash,omitempty"`
	BlockStatus ledger.BlockStatus `json:"block_status,omitempty"`
}

// ToResponse renders a ledger transaction for the API. Other handlers returning
// transactions use it too.
func ToResponse(tx ledger.Transaction) Response {
	return Response{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Merchant:    tx.Merchant,
		Amount:      tx.Amount,
		Category:    tx.Category,
		Type:        tx.Type,
		Method:      tx.Method,
		TxHash:      tx.TxHash,
		BlockStatus: tx.BlockStatus,
	}
}

func ToResponseList(txs []ledger.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

// rowDTO is an imported row that has not been written to the ledger yet.
type rowDTO struct {
	Date     string           `json:"date" validate:"required,datetime=2006-01-02"`
	Merchant string           `json:"merchant" validate:"required,max=120"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Category ledger.Category  `json:"category"`
	Type     ledger.Type      `json:"type" validate:"required,oneof=debit credit"`
	Method   ledger.Method    `json:"method"`
	TxHash   string           `json:"tx_hash,omitempty"`
}

func toRowDTO(tx ledger.Transaction) rowDTO {
	return rowDTO{
		Date:     tx.Date.Format(time.DateOnly),
		Merchant: tx.Merchant,
		Amount:   new(tx.Amount),
		Category: tx.Category,
		Type:     tx.Type,
		Method:   tx.Method,
		TxHash:   tx.TxHash,
	}
}

func (r rowDTO) toTransaction() (ledger.Transaction, error) {
	date, err := time.ParseInLocation(time.DateOnly, r.Date, time.Local)
	if err != nil {
		return ledger.Transaction{}, err
	}

	tx := ledger.Transaction{
		Date:     date,
		Merchant: r.Merchant,
		Amount:   *r.Amount,
		Category: r.Category,
		Type:     r.Type,
		Method:   r.Method,
		TxHash:   r.TxHash,
	}

	if !tx.Category.Valid() {
		tx.Category = ledger.CategoryOther
	}

	if !tx.Method.Valid() {
		tx.Method = ledger.MethodBankTransfer
	}

	if tx.TxHash != "" {
		tx.BlockStatus = ledger.BlockVerified
	}

	return tx, nil
}

type conflictDTO struct {
	Incoming rowDTO   `json:"incoming"`
	Existing Response `json:"existing"`
}

type importConflictResponse struct {
	New       []rowDTO      `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type importSuccessResponse struct {
	Imported     int        `json:"imported"`
	Transactions []Response `json:"transactions"`
}

func toSuccessResponse(txs []ledger.Transaction) importSuccessResponse {
	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: ToResponseList(txs),
	}
}

func toConflictResponse(result *ledger.ImportResult) importConflictResponse {
	resp := importConflictResponse{
		New:       make([]rowDTO, 0, len(result.New)),
		Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
	}

	for _, tx := range result.New {
		resp.New = append(resp.New, toRowDTO(tx))
	}

	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictDTO{
			Incoming: toRowDTO(c.Incoming),
			Existing: ToResponse(c.Existing),
		})
	}

	return resp
}
