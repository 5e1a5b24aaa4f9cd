package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository(time.Minute)

	state := model.NewConversationState("conv-1", "user-1")
	state.Fields["name"] = "Jane"
	require.NoError(t, r.Save(ctx, state))

	got, err := r.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane", got.Fields["name"])

	// the loaded snapshot is a copy, mutations do not leak back
	got.Fields["name"] = "John"
	again, err := r.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Fields["name"])
}

func TestMemoryRepositoryLazyExpiry(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository(30 * time.Minute)

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	state := model.NewConversationState("conv-1", "user-1")
	state.LastActiveAt = base
	require.NoError(t, r.Save(ctx, state))

	r.now = func() time.Time { return base.Add(29 * time.Minute) }
	got, err := r.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	r.now = func() time.Time { return base.Add(31 * time.Minute) }
	got, err = r.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Nil(t, got, "idle conversation should be abandoned")
}

func TestMemoryRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository(time.Minute)

	require.NoError(t, r.Save(ctx, model.NewConversationState("conv-1", "user-1")))
	require.NoError(t, r.Delete(ctx, "conv-1"))

	got, err := r.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
