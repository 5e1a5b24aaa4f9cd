package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

func newTestRedisRepo(t *testing.T, ttl time.Duration) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisConversationRepository(client, ttl), mr
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedisRepo(t, 30*time.Minute)

	state := model.NewConversationState("conv-1", "user-1")
	state.Intent = model.IntentInvoice
	state.Phase = model.PhaseCollectingFields
	state.Fields["customer_name"] = "John Doe"

	require.NoError(t, r.Save(ctx, state))

	got, err := r.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, model.IntentInvoice, got.Intent)
	assert.Equal(t, model.PhaseCollectingFields, got.Phase)
	assert.Equal(t, "John Doe", got.Fields["customer_name"])

	ttl := mr.TTL("conversation:conv-1:state")
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestRedisRepositoryMissingIsNil(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedisRepo(t, time.Minute)

	got, err := r.Load(ctx, "no-such-conversation")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRepositorySaveRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedisRepo(t, time.Minute)

	state := model.NewConversationState("conv-2", "user-1")
	require.NoError(t, r.Save(ctx, state))

	mr.FastForward(40 * time.Second)
	require.NoError(t, r.Save(ctx, state))
	assert.Equal(t, time.Minute, mr.TTL("conversation:conv-2:state"))

	mr.FastForward(70 * time.Second)
	got, err := r.Load(ctx, "conv-2")
	require.NoError(t, err)
	assert.Nil(t, got, "state should have expired after the idle window")
}

func TestRedisRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedisRepo(t, time.Minute)

	state := model.NewConversationState("conv-3", "user-1")
	require.NoError(t, r.Save(ctx, state))
	require.NoError(t, r.Delete(ctx, "conv-3"))

	got, err := r.Load(ctx, "conv-3")
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting an absent key is not an error
	assert.NoError(t, r.Delete(ctx, "conv-3"))
}
