package ledgerService

import (
	ledgerRepository "ExpenseChat/internal/api/ledger/repository"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/amqp"
	"ExpenseChat/pkg/taxonomy"
	"ExpenseChat/pkg/utils"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ILedgerService interface {
	Commit(ctx context.Context, req entity.CommitRequest) (entity.Transaction, error)
	Edit(ctx context.Context, userID string, id string, patch entity.TransactionPatch) (entity.Transaction, error)
	Delete(ctx context.Context, userID string, id string) error
	Get(ctx context.Context, userID string, id string) (entity.Transaction, error)
	List(ctx context.Context, userID string, filter entity.TransactionFilter) ([]entity.Transaction, error)
	Snapshot(ctx context.Context, userID string) (entity.LedgerSnapshot, error)
}

type Options struct {
	ReportingCurrency string
	Location          *time.Location
	Now               func() time.Time
}

type ledgerService struct {
	log        *logrus.Logger
	repository ledgerRepository.Repository
	publisher  amqp.IPublisher
	utils      utils.IUtils
	registry   *taxonomy.Registry

	currency string
	location *time.Location
	now      func() time.Time

	mu    sync.Mutex
	books map[string]*book
}

// NewLedgerService keeps every user's ledger in memory. A nil repository
// disables persistence; otherwise writes go through to it first and books are
// loaded from it on first use.
func NewLedgerService(log *logrus.Logger, lr ledgerRepository.Repository, publisher amqp.IPublisher, utils utils.IUtils, registry *taxonomy.Registry, opts Options) ILedgerService {
	if publisher == nil {
		publisher = amqp.NewNoop()
	}
	if registry == nil {
		registry = taxonomy.DefaultRegistry()
	}
	if opts.ReportingCurrency == "" {
		opts.ReportingCurrency = "MXN"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ledgerService{
		log:        log,
		repository: lr,
		publisher:  publisher,
		utils:      utils,
		registry:   registry,
		currency:   opts.ReportingCurrency,
		location:   opts.Location,
		now:        opts.Now,
		books:      make(map[string]*book),
	}
}
