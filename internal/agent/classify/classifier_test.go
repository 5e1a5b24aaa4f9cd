package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		intent     model.Intent
		operation  model.Operation
		confidence float64
	}{
		{
			name:       "full invoice request",
			text:       "Create invoice for John Doe at ABC Corp, email john@abc.com, for website development 40 hours at €60/hour",
			intent:     model.IntentInvoice,
			operation:  model.OperationCreate,
			confidence: 0.85,
		},
		{
			name:       "bare create invoice",
			text:       "I need to create an invoice",
			intent:     model.IntentInvoice,
			operation:  model.OperationCreate,
			confidence: 0.85,
		},
		{
			name:       "noun only no verb",
			text:       "Invoice for Acme Corp for consulting work",
			intent:     model.IntentInvoice,
			operation:  model.OperationUnknown,
			confidence: 0.70,
		},
		{
			name:       "show expenses",
			text:       "Show me my expenses",
			intent:     model.IntentExpense,
			operation:  model.OperationGet,
			confidence: 0.85,
		},
		{
			name:       "quote estimate",
			text:       "Can you make a quote estimate for a bathroom renovation",
			intent:     model.IntentQuote,
			operation:  model.OperationCreate,
			confidence: 1.0,
		},
		{
			name:       "schedule job",
			text:       "Schedule an appointment with Mrs Brown",
			intent:     model.IntentJob,
			operation:  model.OperationCreate,
			confidence: 0.85,
		},
		{
			name:       "delete customer",
			text:       "Please delete that client",
			intent:     model.IntentCustomer,
			operation:  model.OperationDelete,
			confidence: 0.85,
		},
		{
			name:       "three keyword hits cap",
			text:       "The invoice bill charge",
			intent:     model.IntentInvoice,
			operation:  model.OperationUnknown,
			confidence: 1.0,
		},
		{
			name:       "no keyword hit",
			text:       "hello there, how are you",
			intent:     model.IntentUnknown,
			operation:  model.OperationUnknown,
			confidence: 0,
		},
		{
			name:       "empty prompt",
			text:       "",
			intent:     model.IntentUnknown,
			operation:  model.OperationUnknown,
			confidence: 0,
		},
		{
			name:       "substring does not hit",
			text:       "my charger is broken",
			intent:     model.IntentUnknown,
			operation:  model.OperationUnknown,
			confidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.operation, got.Operation)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "Create invoice for John Doe, 40 hours at €60/hour"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(text))
	}
}

func TestClassifyTieBreaksByDeclarationOrder(t *testing.T) {
	// one hit each for invoice and expense; invoice is declared first
	got := Classify("the invoice and the receipt")
	assert.Equal(t, model.IntentInvoice, got.Intent)
}

func TestIsResetCommand(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"never mind", true},
		{"Never mind, forget it", true},
		{"let's start over", true},
		{"reset", true},
		{"cancel the invoice", false},
		{"stop", false},
		{"create an invoice", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsResetCommand(tt.text))
		})
	}
}
