package ledgerService

import (
	"ExpenseChat/internal/api/ledger"
	ledgerRepository "ExpenseChat/internal/api/ledger/repository"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"ExpenseChat/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

// fakeRepository is an in-memory stand-in for the sql repository.
type fakeRepository struct {
	mu      sync.Mutex
	records []ledgerRepository.Record
	failOn  string
	loads   int
}

func (f *fakeRepository) NewClient(tx bool) (ledgerRepository.Client, error) {
	return ledgerRepository.Client{
		Ledger:   f,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func (f *fakeRepository) CreateTransaction(_ context.Context, record ledgerRepository.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "create" {
		return errors.New("connection refused")
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepository) GetTransactionsByUserID(_ context.Context, userID string) ([]ledgerRepository.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.failOn == "load" {
		return nil, errors.New("connection refused")
	}
	var out []ledgerRepository.Record
	for _, r := range f.records {
		if r.Transaction.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateTransaction(_ context.Context, transaction entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "update" {
		return errors.New("connection refused")
	}
	for i := range f.records {
		if f.records[i].Transaction.ID == transaction.ID {
			f.records[i].Transaction = transaction
			return nil
		}
	}
	return ledger.ErrTransactionNotFound
}

func (f *fakeRepository) DeleteTransaction(_ context.Context, userID string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "delete" {
		return errors.New("connection refused")
	}
	for i := range f.records {
		if f.records[i].Transaction.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return ledger.ErrTransactionNotFound
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService(t *testing.T, repo ledgerRepository.Repository) (ILedgerService, *mockPublisher) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	c := &clock{now: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)}
	svc := NewLedgerService(log, repo, publisher, utils.New(), taxonomy.DefaultRegistry(), Options{
		ReportingCurrency: "MXN",
		Location:          time.UTC,
		Now:               c.Now,
	})

	return svc, publisher
}

func commitRequest(amount string, category taxonomy.CategoryKey) entity.CommitRequest {
	return entity.CommitRequest{
		UserID:   "u1",
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Source:   entity.SourceManual,
	}
}

func TestCommit_Defaults(t *testing.T) {
	svc, publisher := newTestService(t, nil)

	tx, err := svc.Commit(context.Background(), commitRequest("250.005", taxonomy.CategoryTransportation))

	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.True(t, decimal.RequireFromString("250.01").Equal(tx.Amount))
	assert.Equal(t, "MXN", tx.Currency)
	assert.Equal(t, "2024-03-13", calendar.Format(tx.OccurredAt))
	assert.Nil(t, tx.Note)
	assert.Equal(t, tx.CreatedAt, tx.UpdatedAt)

	publisher.AssertCalled(t, "Publish", mock.Anything, EventCommitted, mock.MatchedBy(func(e TransactionEvent) bool {
		return e.TransactionID == tx.ID && e.Version == 1
	}))
}

func TestCommit_InvalidLeavesLedgerUntouched(t *testing.T) {
	svc, publisher := newTestService(t, nil)

	tests := []struct {
		name string
		req  entity.CommitRequest
	}{
		{"zero amount", commitRequest("0", taxonomy.CategoryGroceries)},
		{"negative amount", commitRequest("-5", taxonomy.CategoryGroceries)},
		{"unknown category", commitRequest("10", taxonomy.CategoryKey("pets"))},
		{"unknown payment method", func() entity.CommitRequest {
			r := commitRequest("10", taxonomy.CategoryGroceries)
			r.PaymentMethod = taxonomy.PaymentMethodKey("barter")
			return r
		}()},
		{"bad currency", func() entity.CommitRequest {
			r := commitRequest("10", taxonomy.CategoryGroceries)
			r.Currency = "PESOS"
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Commit(context.Background(), tt.req)
			assert.ErrorIs(t, err, ledger.ErrInvalidTransaction)
		})
	}

	snap, err := svc.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Zero(t, snap.Version)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommit_EmptyUser(t *testing.T) {
	svc, _ := newTestService(t, nil)

	req := commitRequest("10", taxonomy.CategoryGroceries)
	req.UserID = " "

	_, err := svc.Commit(context.Background(), req)
	assert.ErrorIs(t, err, ledger.ErrInvalidUserID)
}

func TestCommit_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, nil)

	req := commitRequest("80", taxonomy.CategoryFoodDining)
	req.IdempotencyKey = "capture-1"

	first, err := svc.Commit(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Commit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	txs, err := svc.List(context.Background(), "u1", entity.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestEdit_KeepsCreatedAt(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tx, err := svc.Commit(context.Background(), commitRequest("100", taxonomy.CategoryGroceries))
	require.NoError(t, err)

	amount := decimal.RequireFromString("120.50")
	category := taxonomy.CategoryShopping
	edited, err := svc.Edit(context.Background(), "u1", tx.ID, entity.TransactionPatch{
		Amount:   &amount,
		Category: &category,
	})
	require.NoError(t, err)

	assert.Equal(t, tx.ID, edited.ID)
	assert.True(t, amount.Equal(edited.Amount))
	assert.Equal(t, taxonomy.CategoryShopping, edited.Category)
	assert.Equal(t, tx.CreatedAt, edited.CreatedAt)
	assert.True(t, edited.UpdatedAt.After(tx.CreatedAt))

	got, err := svc.Get(context.Background(), "u1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, edited, got)
}

func TestEdit_Errors(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tx, err := svc.Commit(context.Background(), commitRequest("100", taxonomy.CategoryGroceries))
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), "u1", "missing", entity.TransactionPatch{})
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	zero := decimal.Zero
	_, err = svc.Edit(context.Background(), "u1", tx.ID, entity.TransactionPatch{Amount: &zero})
	assert.ErrorIs(t, err, ledger.ErrInvalidTransaction)

	got, err := svc.Get(context.Background(), "u1", tx.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(got.Amount))
}

func TestDelete_Twice(t *testing.T) {
	svc, publisher := newTestService(t, nil)

	tx, err := svc.Commit(context.Background(), commitRequest("100", taxonomy.CategoryGroceries))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", tx.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), "u1", tx.ID), ledger.ErrTransactionNotFound)

	_, err = svc.Get(context.Background(), "u1", tx.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	publisher.AssertCalled(t, "Publish", mock.Anything, EventDeleted, mock.Anything)
}

func TestDelete_KeepsOtherIndexes(t *testing.T) {
	svc, _ := newTestService(t, nil)

	var ids []string
	for _, amount := range []string{"1", "2", "3"} {
		tx, err := svc.Commit(context.Background(), commitRequest(amount, taxonomy.CategoryGroceries))
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	require.NoError(t, svc.Delete(context.Background(), "u1", ids[0]))

	got, err := svc.Get(context.Background(), "u1", ids[2])
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3").Equal(got.Amount))
}

func TestList_OrderAndFilter(t *testing.T) {
	svc, _ := newTestService(t, nil)

	older := commitRequest("10", taxonomy.CategoryGroceries)
	older.OccurredAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sameDayA := commitRequest("20", taxonomy.CategoryFoodDining)
	sameDayB := commitRequest("30", taxonomy.CategoryFoodDining)

	for _, req := range []entity.CommitRequest{older, sameDayA, sameDayB} {
		_, err := svc.Commit(context.Background(), req)
		require.NoError(t, err)
	}

	txs, err := svc.List(context.Background(), "u1", entity.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, decimal.RequireFromString("30").Equal(txs[0].Amount))
	assert.True(t, decimal.RequireFromString("20").Equal(txs[1].Amount))
	assert.True(t, decimal.RequireFromString("10").Equal(txs[2].Amount))

	txs, err = svc.List(context.Background(), "u1", entity.TransactionFilter{
		Categories: []taxonomy.CategoryKey{taxonomy.CategoryGroceries},
	})
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	r, err := calendar.NewRange(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	txs, err = svc.List(context.Background(), "u1", entity.TransactionFilter{Range: &r})
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	bad := calendar.Range{From: r.To.AddDate(0, 0, 1), To: r.To}
	_, err = svc.List(context.Background(), "u1", entity.TransactionFilter{Range: &bad})
	assert.ErrorIs(t, err, ledger.ErrInvalidFilter)
}

func TestUsersAreIsolated(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tx, err := svc.Commit(context.Background(), commitRequest("10", taxonomy.CategoryGroceries))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "u2", tx.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestSnapshot_VersionBumpsPerMutation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tx, err := svc.Commit(context.Background(), commitRequest("10", taxonomy.CategoryGroceries))
	require.NoError(t, err)

	note := "weekly run"
	_, err = svc.Edit(context.Background(), "u1", tx.ID, entity.TransactionPatch{Note: &note})
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Version)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "weekly run", *snap.Transactions[0].Note)
}

func TestConcurrentCommits(t *testing.T) {
	svc, _ := newTestService(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Commit(context.Background(), commitRequest("1", taxonomy.CategoryGroceries))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := svc.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, snap.Transactions, 50)
	assert.Equal(t, uint64(50), snap.Version)
}

func TestRepository_WriteThroughAndReload(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := newTestService(t, repo)

	req := commitRequest("42.5", taxonomy.CategoryHealth)
	req.IdempotencyKey = "capture-9"
	tx, err := svc.Commit(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, repo.records, 1)

	reloaded, _ := newTestService(t, repo)
	got, err := reloaded.Get(context.Background(), "u1", tx.ID)
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(got.Amount))

	again, err := reloaded.Commit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, again.ID)
	assert.Len(t, repo.records, 1)
}

func TestRepository_FailsClosed(t *testing.T) {
	repo := &fakeRepository{}
	svc, publisher := newTestService(t, repo)

	tx, err := svc.Commit(context.Background(), commitRequest("10", taxonomy.CategoryGroceries))
	require.NoError(t, err)

	repo.failOn = "create"
	_, err = svc.Commit(context.Background(), commitRequest("20", taxonomy.CategoryGroceries))
	assert.ErrorIs(t, err, ledger.ErrCreateTransaction)

	repo.failOn = "delete"
	assert.ErrorIs(t, svc.Delete(context.Background(), "u1", tx.ID), ledger.ErrDeleteTransaction)

	snap, err := svc.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, snap.Transactions, 1)
	assert.Equal(t, uint64(1), snap.Version)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestRepository_LoadFailure(t *testing.T) {
	repo := &fakeRepository{failOn: "load"}
	svc, _ := newTestService(t, repo)

	_, err := svc.Snapshot(context.Background(), "u1")
	assert.ErrorIs(t, err, ledger.ErrLoadLedger)

	repo.failOn = ""
	_, err = svc.Snapshot(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, 2, repo.loads)
}

func TestPublishFailureDoesNotFailCommit(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, EventCommitted, mock.Anything).Return(errors.New("broker down")).Once()

	svc := NewLedgerService(log, nil, publisher, utils.New(), nil, Options{})

	_, err := svc.Commit(context.Background(), commitRequest("10", taxonomy.CategoryGroceries))
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}
