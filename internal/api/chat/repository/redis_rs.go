package chatRepository

import (
	"ExpenseChat/internal/entity"
	redisPkg "ExpenseChat/pkg/redis"
	"errors"
	"time"

	"golang.org/x/net/context"
)

type redisRepository struct {
	redis redisPkg.IRedis
	ttl   time.Duration
}

// NewRedis shares pending captures between instances. Keys expire after ttl.
func NewRedis(redis redisPkg.IRedis, ttl time.Duration) IPendingRepository {
	return &redisRepository{redis: redis, ttl: ttl}
}

func (r *redisRepository) Get(c context.Context, userID, conversationID string) (entity.PendingCapture, bool, error) {
	var capture entity.PendingCapture
	err := r.redis.GetJSON(c, pendingKey(userID, conversationID), &capture)
	if errors.Is(err, redisPkg.ErrNotFound) {
		return entity.PendingCapture{}, false, nil
	}
	if err != nil {
		return entity.PendingCapture{}, false, err
	}
	return capture, true, nil
}

func (r *redisRepository) Save(c context.Context, capture entity.PendingCapture) error {
	return r.redis.SetJSON(c, pendingKey(capture.UserID, capture.ConversationID), capture, r.ttl)
}

func (r *redisRepository) Delete(c context.Context, userID, conversationID string) error {
	return r.redis.Delete(c, pendingKey(userID, conversationID))
}
