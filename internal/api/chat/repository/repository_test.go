package chatRepository

import (
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/nlp"
	redisPkg "ExpenseChat/pkg/redis"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) SetJSON(_ context.Context, key string, value any, expiration time.Duration) error {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = payload
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) GetJSON(_ context.Context, key string, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.data[key]
	if !ok {
		return redisPkg.ErrNotFound
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payload, dest)
}

func (f *fakeRedis) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func sampleCapture() entity.PendingCapture {
	amount := decimal.RequireFromString("250.50")
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	return entity.PendingCapture{
		ID:             "c1",
		UserID:         "alice",
		ConversationID: "conv-1",
		Partial:        nlp.PartialTransaction{Amount: &amount, Currency: "MXN"},
		MissingSlots:   []nlp.Slot{nlp.SlotCategory},
		AmbiguousSlots: []nlp.Slot{nlp.SlotOccurredAt},
		Candidates: map[nlp.Slot][]nlp.Candidate{
			nlp.SlotOccurredAt: {{Value: "2024-03-11", Label: "Mon, Mar 11"}, {Value: "2024-03-12", Label: "Tue, Mar 12"}},
		},
		AskedSlot:  nlp.SlotCategory,
		TurnsAsked: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(30 * time.Minute),
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "alice", "conv-1")
	require.NoError(t, err)
	assert.False(t, ok)

	capture := sampleCapture()
	require.NoError(t, repo.Save(ctx, capture))

	got, ok, err := repo.Get(ctx, "alice", "conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, capture.ID, got.ID)

	got.MissingSlots[0] = nlp.SlotAmount
	got.Candidates[nlp.SlotOccurredAt][0].Value = "changed"

	again, _, _ := repo.Get(ctx, "alice", "conv-1")
	assert.Equal(t, nlp.SlotCategory, again.MissingSlots[0])
	assert.Equal(t, "2024-03-11", again.Candidates[nlp.SlotOccurredAt][0].Value)

	_, ok, _ = repo.Get(ctx, "bob", "conv-1")
	assert.False(t, ok)

	require.NoError(t, repo.Delete(ctx, "alice", "conv-1"))
	_, ok, _ = repo.Get(ctx, "alice", "conv-1")
	assert.False(t, ok)
}

func TestRedisRepository(t *testing.T) {
	fake := newFakeRedis()
	repo := NewRedis(fake, 30*time.Minute)
	ctx := context.Background()

	capture := sampleCapture()
	require.NoError(t, repo.Save(ctx, capture))
	assert.Equal(t, 30*time.Minute, fake.ttls["chat:pending:alice:conv-1"])

	got, ok, err := repo.Get(ctx, "alice", "conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("250.50").Equal(*got.Partial.Amount))
	assert.Equal(t, capture.Candidates, got.Candidates)
	assert.Equal(t, capture.AmbiguousSlots, got.AmbiguousSlots)
	assert.True(t, capture.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, repo.Delete(ctx, "alice", "conv-1"))
	_, ok, err = repo.Get(ctx, "alice", "conv-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
