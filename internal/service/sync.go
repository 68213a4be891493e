package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/domain/synclog"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// SyncService mirrors the provider into the local store
type SyncService interface {
	// RunFullSync fetches customers, their invoices and the trailing payment window
	// and writes them with the configured strategy. Only one run is active at a time.
	RunFullSync(ctx context.Context, creds *zoho.Credentials, trigger types.SyncTrigger) (*dto.SyncResponse, error)
	ListLogs(ctx context.Context, filter *types.SyncLogFilter) (*dto.ListSyncLogsResponse, error)
	IsRunning() bool
}

type syncService struct {
	ServiceParams

	mu      sync.Mutex
	running bool
	now     func() time.Time
}

func NewSyncService(params ServiceParams) SyncService {
	return &syncService{
		ServiceParams: params,
		now:           time.Now,
	}
}

// mirrorRepository is the write surface every mirrored collection shares
type mirrorRepository[T any] interface {
	DeleteAll(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, items []T) error
	UpsertMany(ctx context.Context, items []T) (int, error)
	DeleteExcept(ctx context.Context, keys []string) (int, error)
}

func (s *syncService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *syncService) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *syncService) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *syncService) strategy() types.SyncStrategy {
	if s.Config.Sync.Strategy.IsValid() {
		return s.Config.Sync.Strategy
	}
	return types.SyncStrategyUpsert
}

func (s *syncService) paymentMonths() int {
	if s.Config.Sync.PaymentMonths > 0 {
		return s.Config.Sync.PaymentMonths
	}
	return types.SyncPaymentMonths
}

func (s *syncService) RunFullSync(ctx context.Context, creds *zoho.Credentials, trigger types.SyncTrigger) (*dto.SyncResponse, error) {
	if creds == nil || creds.AccessToken == "" {
		return nil, ierr.NewError("zoho is not authorized").
			WithHint("Authorize Zoho before running a sync").
			Mark(ierr.ErrPermissionDenied)
	}
	if !s.acquire() {
		return nil, ierr.NewError("sync already in progress").
			WithHint("A sync is already running. Try again when it finishes.").
			Mark(ierr.ErrInvalidOperation)
	}
	defer s.release()

	strategy := s.strategy()
	startedAt := s.now().UTC()
	log := &synclog.SyncLog{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SYNC_LOG),
		Trigger:   trigger,
		Strategy:  strategy,
		Status:    types.SyncStatusRunning,
		Stage:     types.SyncStageStarted,
		Actor:     types.GetActor(ctx),
		StartedAt: startedAt,
	}
	if err := s.SyncLogRepo.Create(ctx, log); err != nil {
		s.Logger.Warnw("failed to record sync start", "error", err)
	}

	logger := s.Logger.GetLoggerWithContext(ctx)
	logger.Infow("starting zoho sync",
		"sync_log_id", log.ID,
		"trigger", trigger,
		"strategy", strategy,
	)

	removed, err := s.run(ctx, *creds, strategy, log)

	finishedAt := s.now().UTC()
	log.FinishedAt = &finishedAt
	if err != nil {
		log.Status = types.SyncStatusFailed
		log.Error = err.Error()
		s.checkpoint(ctx, log)
		logger.Errorw("zoho sync failed",
			"sync_log_id", log.ID,
			"stage", log.Stage,
			"error", err,
		)
		notify(ctx, s.ServiceParams, types.NotificationTypeSync,
			fmt.Sprintf("Zoho sync failed after stage %s", log.Stage),
			map[string]string{"sync_log_id": log.ID, "error": err.Error()})
		return nil, err
	}

	log.Status = types.SyncStatusSuccess
	s.checkpoint(ctx, log)

	if s.Cache != nil {
		s.Cache.Flush(ctx)
	}

	message := fmt.Sprintf("Synced %d customers, %d invoices and %d payments", log.Customers, log.Invoices, log.Payments)
	logger.Infow("zoho sync completed",
		"sync_log_id", log.ID,
		"customers", log.Customers,
		"invoices", log.Invoices,
		"payments", log.Payments,
		"removed", removed,
		"duration", log.Duration(),
	)
	notify(ctx, s.ServiceParams, types.NotificationTypeSync, message, map[string]string{"sync_log_id": log.ID})

	return &dto.SyncResponse{
		Success:    true,
		Message:    message,
		Customers:  log.Customers,
		Invoices:   log.Invoices,
		Payments:   log.Payments,
		Months:     log.Months,
		Removed:    removed,
		Strategy:   strategy,
		Trigger:    trigger,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		DurationMs: log.Duration().Milliseconds(),
		SyncLogID:  log.ID,
	}, nil
}

// run performs the stages in order and stops at the first error
func (s *syncService) run(ctx context.Context, creds zoho.Credentials, strategy types.SyncStrategy, log *synclog.SyncLog) (int, error) {
	removed := 0

	// customers
	contacts, err := s.ZohoClient.ListCustomers(ctx, creds)
	if err != nil {
		return removed, err
	}
	customers := lo.UniqBy(lo.Map(contacts, func(c zoho.Contact, _ int) *customer.Customer {
		return c.ToCustomer(ctx)
	}), func(c *customer.Customer) string { return c.ContactID })

	n, err := writeMirror[*customer.Customer](ctx, s.CustomerRepo, strategy, customers, func(c *customer.Customer) string {
		return c.ContactID
	})
	if err != nil {
		return removed, err
	}
	removed += n
	log.Customers = len(customers)
	log.Stage = types.SyncStageCustomers
	s.checkpoint(ctx, log)

	// invoices, one customer at a time
	invoices := make([]*invoice.Invoice, 0)
	for _, c := range customers {
		items, err := s.ZohoClient.ListInvoices(ctx, creds, c.ContactID)
		if err != nil {
			return removed, err
		}
		for i := range items {
			inv, err := items[i].ToInvoice(ctx)
			if err != nil {
				return removed, err
			}
			invoices = append(invoices, inv)
		}
	}
	invoices = lo.UniqBy(invoices, func(inv *invoice.Invoice) string { return inv.InvoiceID })

	n, err = writeMirror[*invoice.Invoice](ctx, s.InvoiceRepo, strategy, invoices, func(inv *invoice.Invoice) string {
		return inv.InvoiceID
	})
	if err != nil {
		return removed, err
	}
	removed += n
	log.Invoices = len(invoices)
	log.Stage = types.SyncStageInvoices
	s.checkpoint(ctx, log)

	// payments for the trailing months, newest first
	months := types.TrailingMonths(s.now(), s.paymentMonths())
	payments := make([]*payment.Payment, 0)
	for _, month := range months {
		items, err := s.ZohoClient.ListPayments(ctx, creds, month.Start(), month.LastDay())
		if err != nil {
			return removed, err
		}
		for i := range items {
			p, err := items[i].ToPayment(ctx)
			if err != nil {
				return removed, err
			}
			payments = append(payments, p)
		}
	}
	payments = lo.UniqBy(payments, func(p *payment.Payment) string { return p.PaymentID })

	n, err = writeMirror[*payment.Payment](ctx, s.PaymentRepo, strategy, payments, func(p *payment.Payment) string {
		return p.PaymentID
	})
	if err != nil {
		return removed, err
	}
	removed += n
	log.Payments = len(payments)
	log.Months = len(months)
	log.Stage = types.SyncStagePayments

	return removed, nil
}

// writeMirror makes the collection equal to items and returns how many documents went away.
// Replace empties the collection first; upsert writes by key then prunes the keys not fetched.
func writeMirror[T any](ctx context.Context, repo mirrorRepository[T], strategy types.SyncStrategy, items []T, key func(T) string) (int, error) {
	if strategy == types.SyncStrategyReplace {
		deleted, err := repo.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		if err := repo.InsertMany(ctx, items); err != nil {
			return 0, err
		}
		return max(deleted-len(items), 0), nil
	}

	if _, err := repo.UpsertMany(ctx, items); err != nil {
		return 0, err
	}
	return repo.DeleteExcept(ctx, lo.Map(items, func(item T, _ int) string { return key(item) }))
}

func (s *syncService) checkpoint(ctx context.Context, log *synclog.SyncLog) {
	if err := s.SyncLogRepo.Update(ctx, log); err != nil {
		s.Logger.Warnw("failed to update sync log",
			"sync_log_id", log.ID,
			"stage", log.Stage,
			"error", err,
		)
	}
}

func (s *syncService) ListLogs(ctx context.Context, filter *types.SyncLogFilter) (*dto.ListSyncLogsResponse, error) {
	if filter == nil {
		filter = types.NewSyncLogFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.QueryFilter.WithDefaults()

	logs, err := s.SyncLogRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.SyncLogRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(logs, func(l *synclog.SyncLog, _ int) *dto.SyncLogResponse {
		return dto.NewSyncLogResponse(l)
	})
	resp := types.NewListResponse(items, total, filter.GetPage(), filter.GetLimit())
	return &resp, nil
}
