package business

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

func newTestBackend() *MemoryBackend {
	b := NewMemoryBackend()
	b.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return b
}

func invoiceFields() model.Fields {
	return model.Fields{
		"customer_name":  "John Doe",
		"customer_email": "john@abc.com",
		"items":          []any{map[string]any{"description": "website development", "quantity": 40.0, "unit_price": 60.0, "total": 2400.0}},
		"total_amount":   2400.0,
	}
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	data, err := b.Create(ctx, "user-1", model.IntentInvoice, invoiceFields())
	require.NoError(t, err)

	payload := data.(model.Fields)
	assert.Equal(t, "INV-2025-001", payload["invoice_number"])
	assert.Equal(t, "draft", payload["status"])
	assert.Equal(t, 2400.0, payload["total"])
	assert.NotEmpty(t, payload["id"])

	// numbering advances per document
	second, err := b.Create(ctx, "user-1", model.IntentInvoice, invoiceFields())
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-002", second.(model.Fields)["invoice_number"])
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	_, err := b.Create(ctx, "user-1", model.IntentInvoice, model.Fields{"customer_name": "John"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "customer_email")
}

func TestGetByIDAcceptsRecordIDOrNumber(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	created, err := b.Create(ctx, "user-1", model.IntentInvoice, invoiceFields())
	require.NoError(t, err)
	id := created.(model.Fields)["id"].(string)

	byID, err := b.GetByID(ctx, "user-1", model.IntentInvoice, id)
	require.NoError(t, err)
	assert.Equal(t, id, byID.(model.Fields)["id"])

	byNumber, err := b.GetByID(ctx, "user-1", model.IntentInvoice, "INV-2025-001")
	require.NoError(t, err)
	assert.Equal(t, id, byNumber.(model.Fields)["id"])
}

func TestRecordsAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	created, err := b.Create(ctx, "user-1", model.IntentInvoice, invoiceFields())
	require.NoError(t, err)
	id := created.(model.Fields)["id"].(string)

	_, err = b.GetByID(ctx, "user-2", model.IntentInvoice, id)
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := b.GetCollection(ctx, "user-2", model.IntentInvoice, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, data.(map[string]any)["count"])
}

func TestGetCollection(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	for i := 0; i < 3; i++ {
		_, err := b.Create(ctx, "user-1", model.IntentExpense, model.Fields{
			"description": "fuel", "amount": 45.0, "date": "2025-03-01", "category": "fuel",
		})
		require.NoError(t, err)
	}

	data, err := b.GetCollection(ctx, "user-1", model.IntentExpense, nil)
	require.NoError(t, err)
	out := data.(map[string]any)
	assert.Equal(t, 3, out["count"])
	assert.Len(t, out["results"], 3)
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	created, err := b.Create(ctx, "user-1", model.IntentCustomer, model.Fields{
		"name": "Maria", "email": "maria@lopez.es", "phone": "+34 612 345 678", "address": "12 Calle Mayor",
	})
	require.NoError(t, err)
	id := created.(model.Fields)["id"].(string)

	b.now = func() time.Time { return time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC) }
	updated, err := b.Update(ctx, "user-1", model.IntentCustomer, id, model.Fields{"phone": "+34 699 000 111"})
	require.NoError(t, err)
	payload := updated.(model.Fields)
	assert.Equal(t, "+34 699 000 111", payload["phone"])
	assert.Equal(t, "Maria", payload["name"])
	assert.Contains(t, payload, "updated_at")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	created, err := b.Create(ctx, "user-1", model.IntentJob, model.Fields{
		"title": "maintenance visit", "customer_name": "John", "scheduled_date": "2025-03-11", "duration": 2.0,
	})
	require.NoError(t, err)
	id := created.(model.Fields)["id"].(string)

	data, err := b.Delete(ctx, "user-1", model.IntentJob, id)
	require.NoError(t, err)
	assert.Equal(t, true, data.(map[string]any)["deleted"])

	_, err = b.GetByID(ctx, "user-1", model.IntentJob, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteNumbering(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	created, err := b.Create(ctx, "user-1", model.IntentQuote, model.Fields{
		"customer_name":   "Jane",
		"customer_email":  "jane@smith.io",
		"services":        []any{map[string]any{"description": "garden redesign"}},
		"estimated_total": 800.0,
	})
	require.NoError(t, err)
	payload := created.(model.Fields)
	assert.True(t, strings.HasPrefix(payload["quote_number"].(string), "QUO-2025-"))
	assert.Equal(t, 800.0, payload["total"])
}
