package ledgerService

import (
	"ExpenseChat/internal/entity"
	"sync"
)

// book is one user's ledger. Readers share the lock, writers hold it
// exclusively, and every mutation bumps version.
type book struct {
	mu sync.RWMutex

	loaded       bool
	transactions []entity.Transaction
	index        map[string]int
	idempotency  map[string]string
	keys         map[string]string
	version      uint64
}

func newBook() *book {
	return &book{
		index:       make(map[string]int),
		idempotency: make(map[string]string),
		keys:        make(map[string]string),
	}
}

func (b *book) get(id string) (entity.Transaction, bool) {
	i, ok := b.index[id]
	if !ok {
		return entity.Transaction{}, false
	}
	return b.transactions[i], true
}

func (b *book) byKey(key string) (entity.Transaction, bool) {
	if key == "" {
		return entity.Transaction{}, false
	}
	id, ok := b.idempotency[key]
	if !ok {
		return entity.Transaction{}, false
	}
	return b.get(id)
}

func (b *book) insert(t entity.Transaction, key string) {
	b.index[t.ID] = len(b.transactions)
	b.transactions = append(b.transactions, t)
	if key != "" {
		b.idempotency[key] = t.ID
		b.keys[t.ID] = key
	}
}

func (b *book) replace(t entity.Transaction) {
	b.transactions[b.index[t.ID]] = t
}

func (b *book) remove(id string) {
	i, ok := b.index[id]
	if !ok {
		return
	}

	b.transactions = append(b.transactions[:i], b.transactions[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.transactions); j++ {
		b.index[b.transactions[j].ID] = j
	}

	if key, ok := b.keys[id]; ok {
		delete(b.idempotency, key)
		delete(b.keys, id)
	}
}

func (b *book) snapshot() entity.LedgerSnapshot {
	txs := make([]entity.Transaction, len(b.transactions))
	copy(txs, b.transactions)
	entity.SortTransactions(txs)

	return entity.LedgerSnapshot{
		Version:      b.version,
		Transactions: txs,
	}
}
