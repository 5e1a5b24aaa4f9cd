package model

import "strings"

// Fields holds extracted field values keyed by field name. Absent keys mean
// "not yet provided", which is distinct from an explicitly empty value.
type Fields map[string]any

// Clone returns a shallow copy so snapshots handed to callers cannot mutate
// conversation state.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge applies new values over f. A key is only overwritten when the new
// value is meaningful, so a later vague turn cannot erase earlier data.
// Within a conversation the last meaningful write wins.
func (f Fields) Merge(in Fields) {
	for k, v := range in {
		if Meaningful(v) {
			f[k] = v
		} else if _, ok := f[k]; !ok {
			f[k] = v
		}
	}
}

// Meaningful reports whether a value carries real information. Empty strings,
// placeholder strings, empty collections and zero float amounts do not.
func Meaningful(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		switch s {
		case "", "n/a", "na", "null", "none", "undefined":
			return false
		}
		return true
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case Fields:
		return len(t) > 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	}
	return true
}

// FieldSpec describes the fields an intent needs before dispatch, in the order
// follow-up questions should name them.
type FieldSpec struct {
	Required []string
	Optional []string
}

var fieldSpecs = map[Intent]FieldSpec{
	IntentInvoice: {
		Required: []string{"customer_name", "customer_email", "items", "total_amount"},
		Optional: []string{"customer_phone", "customer_address", "subtotal", "tax_rate", "tax_amount", "invoice_date", "due_date"},
	},
	IntentQuote: {
		Required: []string{"customer_name", "customer_email", "services", "estimated_total"},
		Optional: []string{"customer_phone", "subtotal", "discount_percent", "discount_amount", "valid_until"},
	},
	IntentCustomer: {
		Required: []string{"name", "email", "phone", "address"},
		Optional: []string{"company", "notes", "language_preference"},
	},
	IntentJob: {
		Required: []string{"title", "customer_name", "scheduled_date", "duration"},
		Optional: []string{"customer_email", "scheduled_time", "location", "notes"},
	},
	IntentExpense: {
		Required: []string{"description", "amount", "date", "category"},
		Optional: []string{"vendor", "payment_method", "receipt_number", "vat_rate", "vat_amount"},
	},
}

// SpecFor returns the field spec for an intent. Unknown intents have no
// required fields.
func SpecFor(intent Intent) FieldSpec {
	return fieldSpecs[intent]
}

// MissingRequired returns the required fields of intent that are absent or not
// meaningful in fields, in declaration order.
func MissingRequired(intent Intent, fields Fields) []string {
	spec := fieldSpecs[intent]
	var missing []string
	for _, name := range spec.Required {
		if v, ok := fields[name]; !ok || !Meaningful(v) {
			missing = append(missing, name)
		}
	}
	return missing
}

var fieldLabels = map[string]string{
	"customer_name":   "customer name",
	"customer_email":  "customer email",
	"items":           "items or services",
	"total_amount":    "total amount",
	"services":        "services or items",
	"estimated_total": "estimated total",
	"name":            "name",
	"email":           "email address",
	"phone":           "phone number",
	"address":         "address",
	"title":           "job title",
	"scheduled_date":  "scheduled date",
	"duration":        "duration",
	"description":     "description",
	"amount":          "amount",
	"date":            "date",
	"category":        "category",
	"id":              "identifier",
}

// FieldLabel returns the human wording for a field name, falling back to the
// raw name for fields without a label.
func FieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return name
}

// FieldLabels maps field names to their labels, preserving order.
func FieldLabels(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, FieldLabel(n))
	}
	return out
}
