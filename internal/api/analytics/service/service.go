package analyticsService

import (
	ledgerService "ExpenseChat/internal/api/ledger/service"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/nlp"
	"ExpenseChat/pkg/taxonomy"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IAnalyticsService interface {
	Dashboard(ctx context.Context, userID string, req entity.DashboardRequest) (entity.Dashboard, error)
	Summarize(ctx context.Context, userID string, query nlp.QueryRequest) (entity.Summary, error)
}

type Options struct {
	ReportingCurrency string
	Location          *time.Location
	Now               func() time.Time
}

type analyticsService struct {
	log           *logrus.Logger
	ledgerService ledgerService.ILedgerService
	registry      *taxonomy.Registry

	currency string
	location *time.Location
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]entity.Dashboard
}

func NewAnalyticsService(log *logrus.Logger, ls ledgerService.ILedgerService, registry *taxonomy.Registry, opts Options) IAnalyticsService {
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

	return &analyticsService{
		log:           log,
		ledgerService: ls,
		registry:      registry,
		currency:      opts.ReportingCurrency,
		location:      opts.Location,
		now:           opts.Now,
		cache:         make(map[string]entity.Dashboard),
	}
}
