package conversations

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/repo"
	errx "github.com/codexcapeusman-ui/Devia-Backend/internal/core/error"
)

func newTestStore() *Store {
	return NewStore(repo.NewMemoryConversationRepository(30 * time.Minute))
}

func TestGetOrCreateStartsFresh(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	state, err := s.GetOrCreate(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", state.ConversationID)
	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, model.PhaseAwaitingIntent, state.Phase)
	assert.Equal(t, model.IntentUnknown, state.Intent)
	assert.Empty(t, state.Fields)
}

func TestGetOrCreateResumesSavedState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	state, err := s.GetOrCreate(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	state.Intent = model.IntentQuote
	state.Phase = model.PhaseCollectingFields
	state.Fields["customer_name"] = "Jane"
	require.NoError(t, s.Save(ctx, state))

	resumed, err := s.GetOrCreate(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.IntentQuote, resumed.Intent)
	assert.Equal(t, "Jane", resumed.Fields["customer_name"])
}

func TestGetOrCreateRejectsOtherUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	state, err := s.GetOrCreate(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, state))

	_, err = s.GetOrCreate(ctx, "conv-1", "user-2")
	require.Error(t, err)

	var appErr *errx.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusForbidden, appErr.Status)
}

func TestSaveTouchesIdleClock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	touched := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return touched }

	state := model.NewConversationState("conv-1", "user-1")
	state.LastActiveAt = touched.Add(-time.Hour)
	require.NoError(t, s.Save(ctx, state))

	assert.Equal(t, touched, state.LastActiveAt)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	t.Run("unknown conversation is inactive", func(t *testing.T) {
		status, err := s.Status(ctx, "nope", "user-1")
		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.Equal(t, "nope", status.ConversationID)
	})

	t.Run("live conversation snapshot", func(t *testing.T) {
		state, err := s.GetOrCreate(ctx, "conv-1", "user-1")
		require.NoError(t, err)
		state.Intent = model.IntentExpense
		state.Phase = model.PhaseCollectingFields
		state.Fields["amount"] = 45.0
		state.TurnCount = 2
		require.NoError(t, s.Save(ctx, state))

		status, err := s.Status(ctx, "conv-1", "user-1")
		require.NoError(t, err)
		assert.True(t, status.Active)
		assert.Equal(t, model.IntentExpense, status.Intent)
		assert.Equal(t, model.PhaseCollectingFields, status.Phase)
		assert.True(t, status.HasData)
		assert.Equal(t, 2, status.TurnCount)
	})

	t.Run("other user may not peek", func(t *testing.T) {
		_, err := s.Status(ctx, "conv-1", "user-2")
		assert.Error(t, err)
	})
}

func TestLockSerializesSameConversation(t *testing.T) {
	s := newTestStore()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock("conv-1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "turns for one conversation must not overlap")

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.locks, "released locks should not accumulate")
}
