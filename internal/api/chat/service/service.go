package chatService

import (
	analyticsService "ExpenseChat/internal/api/analytics/service"
	chatRepository "ExpenseChat/internal/api/chat/repository"
	ledgerService "ExpenseChat/internal/api/ledger/service"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/nlp"
	"ExpenseChat/pkg/taxonomy"
	"ExpenseChat/pkg/utils"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	DefaultMaxClarificationTurns = 3
	DefaultPendingTTL            = 30 * time.Minute
)

type IChatService interface {
	SendUtterance(ctx context.Context, userID, conversationID, text string, now time.Time) (entity.Reply, error)
	Cancel(ctx context.Context, userID, conversationID string) (entity.Reply, error)
	Parse(text string, now time.Time) (nlp.ParseResult, nlp.Intent, string)
}

type Options struct {
	MaxClarificationTurns int
	PendingTTL            time.Duration
	RequirePaymentMethod  bool
	RequireDate           bool
	Location              *time.Location
}

type chatService struct {
	log       *logrus.Logger
	parser    nlp.IParser
	ledger    ledgerService.ILedgerService
	analytics analyticsService.IAnalyticsService
	pending   chatRepository.IPendingRepository
	utils     utils.IUtils
	registry  *taxonomy.Registry

	maxTurns             int
	ttl                  time.Duration
	requirePaymentMethod bool
	requireDate          bool
	location             *time.Location

	locks *keyedMutex
}

func NewChatService(
	log *logrus.Logger,
	parser nlp.IParser,
	ls ledgerService.ILedgerService,
	as analyticsService.IAnalyticsService,
	pending chatRepository.IPendingRepository,
	utils utils.IUtils,
	registry *taxonomy.Registry,
	opts Options,
) IChatService {
	if registry == nil {
		registry = taxonomy.DefaultRegistry()
	}
	if pending == nil {
		pending = chatRepository.NewMemory()
	}
	if opts.MaxClarificationTurns <= 0 {
		opts.MaxClarificationTurns = DefaultMaxClarificationTurns
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &chatService{
		log:                  log,
		parser:               parser,
		ledger:               ls,
		analytics:            as,
		pending:              pending,
		utils:                utils,
		registry:             registry,
		maxTurns:             opts.MaxClarificationTurns,
		ttl:                  opts.PendingTTL,
		requirePaymentMethod: opts.RequirePaymentMethod,
		requireDate:          opts.RequireDate,
		location:             opts.Location,
		locks:                newKeyedMutex(),
	}
}

// keyedMutex serializes work per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
