package model

// Intent is the business category a free-text prompt maps to.
type Intent string

const (
	IntentInvoice  Intent = "invoice"
	IntentQuote    Intent = "quote"
	IntentCustomer Intent = "customer"
	IntentJob      Intent = "job"
	IntentExpense  Intent = "expense"
	IntentUnknown  Intent = "unknown"
)

// Intents lists every known intent in declaration order. Classifier ties are
// broken by this order, so it must stay stable.
var Intents = []Intent{
	IntentInvoice,
	IntentQuote,
	IntentCustomer,
	IntentJob,
	IntentExpense,
}

// Known reports whether the intent is one of the supported business categories.
func (i Intent) Known() bool {
	switch i {
	case IntentInvoice, IntentQuote, IntentCustomer, IntentJob, IntentExpense:
		return true
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}

// Operation is the CRUD action requested for an intent.
type Operation string

const (
	OperationGet     Operation = "get"
	OperationCreate  Operation = "create"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationUnknown Operation = "unknown"
)

func (o Operation) String() string {
	return string(o)
}
