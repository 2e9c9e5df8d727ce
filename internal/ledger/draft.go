package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Default values applied to any Draft field left unset.
const (
	DefaultMerchant = "Unknown"
	DefaultCategory = CategoryOther
	DefaultType     = TypeDebit
	DefaultMethod   = MethodUPI
)

// Draft is a partially specified transaction as it arrives from a form, an API call or
// the advisor's text extraction. Nil fields fall back to the package defaults.
type Draft struct {
	Merchant *string
	Amount   *decimal.Decimal
	Category *Category
	Type     *Type
	Method   *Method
}

func (d Draft) WithMerchant(m string) Draft {
	d.Merchant = &m
	return d
}

func (d Draft) WithAmount(a decimal.Decimal) Draft {
	d.Amount = &a
	return d
}

func (d Draft) WithCategory(c Category) Draft {
	d.Category = &c
	return d
}

func (d Draft) WithType(t Type) Draft {
	d.Type = &t
	return d
}

func (d Draft) WithMethod(m Method) Draft {
	d.Method = &m
	return d
}

// Build fills every unset or invalid field with its default and stamps the result with meta.
// The provenance hash is not attached here; that depends on wallet state.
func (d Draft) Build(meta Meta) Transaction {
	tx := Transaction{
		ID:       meta.ID,
		Date:     Day(meta.Date),
		Merchant: DefaultMerchant,
		Amount:   decimal.Zero,
		Category: DefaultCategory,
		Type:     DefaultType,
		Method:   DefaultMethod,
	}

	if d.Merchant != nil && strings.TrimSpace(*d.Merchant) != "" {
		tx.Merchant = strings.TrimSpace(*d.Merchant)
	}

	if d.Amount != nil && d.Amount.IsPositive() {
		tx.Amount = *d.Amount
	}

	if d.Category != nil && d.Category.Valid() {
		tx.Category = *d.Category
	}

	if d.Type != nil && d.Type.Valid() {
		tx.Type = *d.Type
	}

	if d.Method != nil && d.Method.Valid() {
		tx.Method = *d.Method
	}

	return tx
}
