package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	errx "github.com/codexcapeusman-ui/Devia-Backend/internal/core/error"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
)

// RedisConversationRepository stores conversation state as a JSON value per
// conversation. The key TTL is refreshed on every save, so an idle
// conversation expires in Redis without any sweeper — the next access simply
// misses and starts fresh.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationRepository) stateKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:state", conversationID)
}

func (r *RedisConversationRepository) Load(ctx context.Context, conversationID string) (*model.ConversationState, error) {
	key := r.stateKey(conversationID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation state from redis")
		return nil, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to unmarshal conversation state")
		return nil, fmt.Errorf("unmarshal conversation state: %w", err)
	}
	if state.Fields == nil {
		state.Fields = model.Fields{}
	}
	return &state, nil
}

func (r *RedisConversationRepository) Save(ctx context.Context, state *model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", state.ConversationID).Msg("failed to marshal conversation state")
		return fmt.Errorf("marshal conversation state: %w", err)
	}
	key := r.stateKey(state.ConversationID)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write conversation state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) Delete(ctx context.Context, conversationID string) error {
	key := r.stateKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
