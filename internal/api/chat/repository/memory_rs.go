package chatRepository

import (
	"ExpenseChat/internal/entity"
	"sync"

	"golang.org/x/net/context"
)

type memoryRepository struct {
	mu      sync.Mutex
	pending map[string]entity.PendingCapture
}

func NewMemory() IPendingRepository {
	return &memoryRepository{pending: make(map[string]entity.PendingCapture)}
}

func (r *memoryRepository) Get(_ context.Context, userID, conversationID string) (entity.PendingCapture, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	capture, ok := r.pending[pendingKey(userID, conversationID)]
	if !ok {
		return entity.PendingCapture{}, false, nil
	}
	return capture.Clone(), true, nil
}

func (r *memoryRepository) Save(_ context.Context, capture entity.PendingCapture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[pendingKey(capture.UserID, capture.ConversationID)] = capture.Clone()
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, pendingKey(userID, conversationID))
	return nil
}
