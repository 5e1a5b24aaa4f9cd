package business

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

// MemoryBackend is an in-process Operations implementation. It keeps records
// per intent and per user, numbered the way the billing documents are
// (INV-2025-001, QUO-2025-001).
type MemoryBackend struct {
	mu      sync.Mutex
	seq     map[model.Intent]int
	records map[model.Intent]map[string]*record

	now   func() time.Time
	newID func() string
}

type record struct {
	id        string
	userID    string
	number    string
	status    string
	fields    model.Fields
	createdAt time.Time
	updatedAt time.Time
}

func NewMemoryBackend() *MemoryBackend {
	records := make(map[model.Intent]map[string]*record, len(model.Intents))
	for _, intent := range model.Intents {
		records[intent] = make(map[string]*record)
	}
	return &MemoryBackend{
		seq:     make(map[model.Intent]int),
		records: records,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
	}
}

var _ Operations = (*MemoryBackend)(nil)

func (b *MemoryBackend) GetCollection(_ context.Context, userID string, intent model.Intent, _ model.Fields) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Fields, 0)
	for _, r := range b.records[intent] {
		if r.userID == userID {
			out = append(out, r.payload(intent))
		}
	}
	return map[string]any{
		"count":   len(out),
		"results": out,
	}, nil
}

func (b *MemoryBackend) GetByID(_ context.Context, userID string, intent model.Intent, id string) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.owned(userID, intent, id)
	if err != nil {
		return nil, err
	}
	return r.payload(intent), nil
}

func (b *MemoryBackend) Create(_ context.Context, userID string, intent model.Intent, fields model.Fields) (any, error) {
	if missing := model.MissingRequired(intent, fields); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrValidation, missing)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	r := &record{
		id:        b.newID(),
		userID:    userID,
		number:    b.nextNumber(intent, now),
		status:    initialStatus(intent),
		fields:    fields.Clone(),
		createdAt: now,
		updatedAt: now,
	}
	b.records[intent][r.id] = r
	return r.payload(intent), nil
}

func (b *MemoryBackend) Update(_ context.Context, userID string, intent model.Intent, id string, fields model.Fields) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.owned(userID, intent, id)
	if err != nil {
		return nil, err
	}
	r.fields.Merge(fields)
	r.updatedAt = b.now()
	return r.payload(intent), nil
}

func (b *MemoryBackend) Delete(_ context.Context, userID string, intent model.Intent, id string) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.owned(userID, intent, id)
	if err != nil {
		return nil, err
	}
	delete(b.records[intent], r.id)
	return map[string]any{"id": r.id, "deleted": true}, nil
}

// owned resolves an id to a record of this user. Records of other users look
// exactly like missing records.
func (b *MemoryBackend) owned(userID string, intent model.Intent, id string) (*record, error) {
	for _, r := range b.records[intent] {
		if r.userID != userID {
			continue
		}
		if r.id == id || r.number == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", ErrNotFound, intent, id)
}

func (b *MemoryBackend) nextNumber(intent model.Intent, now time.Time) string {
	prefix := ""
	switch intent {
	case model.IntentInvoice:
		prefix = "INV"
	case model.IntentQuote:
		prefix = "QUO"
	default:
		return ""
	}
	b.seq[intent]++
	return fmt.Sprintf("%s-%d-%03d", prefix, now.Year(), b.seq[intent])
}

func initialStatus(intent model.Intent) string {
	switch intent {
	case model.IntentInvoice, model.IntentQuote:
		return "draft"
	case model.IntentJob:
		return "scheduled"
	case model.IntentExpense:
		return "recorded"
	default:
		return "active"
	}
}

// payload flattens a record into the response shape: the stored fields plus
// the bookkeeping columns, with the billing total surfaced as "total".
func (r *record) payload(intent model.Intent) model.Fields {
	out := r.fields.Clone()
	out["id"] = r.id
	out["status"] = r.status
	out["created_at"] = r.createdAt.Format(time.RFC3339)
	if !r.updatedAt.Equal(r.createdAt) {
		out["updated_at"] = r.updatedAt.Format(time.RFC3339)
	}

	switch intent {
	case model.IntentInvoice:
		out["invoice_number"] = r.number
		if v, ok := out["total_amount"]; ok {
			out["total"] = v
		}
	case model.IntentQuote:
		out["quote_number"] = r.number
		if v, ok := out["estimated_total"]; ok {
			out["total"] = v
		}
	}
	return out
}
