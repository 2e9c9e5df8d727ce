package statement

import (
	"strings"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type keywordRule struct {
	keyword  string
	category ledger.Category
}

// debitRules map narration keywords to a spending category. First match wins.
var debitRules = []keywordRule{
	{"SWIGGY", ledger.CategoryFood},
	{"ZOMATO", ledger.CategoryFood},
	{"RESTAURANT", ledger.CategoryFood},
	{"CAFE", ledger.CategoryFood},
	{"UBER", ledger.CategoryTransport},
	{"OLA CABS", ledger.CategoryTransport},
	{"IRCTC", ledger.CategoryTransport},
	{"FUEL", ledger.CategoryTransport},
	{"PETROL", ledger.CategoryTransport},
	{"AMAZON", ledger.CategoryShopping},
	{"FLIPKART", ledger.CategoryShopping},
	{"MYNTRA", ledger.CategoryShopping},
	{"NETFLIX", ledger.CategoryEntertainment},
	{"SPOTIFY", ledger.CategoryEntertainment},
	{"BOOKMYSHOW", ledger.CategoryEntertainment},
	{"PHARMACY", ledger.CategoryHealth},
	{"APOLLO", ledger.CategoryHealth},
	{"HOSPITAL", ledger.CategoryHealth},
	{"ELECTRICITY", ledger.CategoryBills},
	{"BROADBAND", ledger.CategoryBills},
	{"RECHARGE", ledger.CategoryBills},
}

// classify guesses category and payment method from a statement narration.
func classify(narration string, txType ledger.Type) (ledger.Category, ledger.Method) {
	upper := strings.ToUpper(narration)

	method := ledger.MethodBankTransfer

	switch {
	case strings.HasPrefix(upper, "UPI"), strings.Contains(upper, "/UPI/"):
		method = ledger.MethodUPI
	case strings.HasPrefix(upper, "POS"), strings.Contains(upper, "CARD"):
		method = ledger.MethodCard
	}

	if txType == ledger.TypeCredit {
		if strings.Contains(upper, "SALARY") || strings.Contains(upper, "SAL CR") {
			return ledger.CategorySalary, method
		}

		return ledger.CategoryTransfer, method
	}

	for _, r := range debitRules {
		if strings.Contains(upper, r.keyword) {
			return r.category, method
		}
	}

	return ledger.CategoryOther, method
}
