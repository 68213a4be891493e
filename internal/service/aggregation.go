package service

import (
	"context"
	"time"

	"github.com/feesync/feesync/internal/aggregation"
	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/cache"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/types"
)

// AggregationService loads mirrored data and computes balances and dashboard figures
type AggregationService interface {
	GetDashboardKPIs(ctx context.Context) (*dto.DashboardKPIsResponse, error)
	GetOutstanding(ctx context.Context, customerID string) (*dto.OutstandingResponse, error)
	GetMonthlyPaid(ctx context.Context, req *dto.MonthlyPaidRequest) (*dto.MonthlyPaidResponse, error)
	ListUnpaid(ctx context.Context, month types.Month) ([]*customer.Customer, error)
	// OutstandingByCustomer returns the balance of every customer with an invoice or payment
	OutstandingByCustomer(ctx context.Context) (map[string]float64, error)
}

type aggregationService struct {
	ServiceParams
	now func() time.Time
}

func NewAggregationService(params ServiceParams) AggregationService {
	return &aggregationService{
		ServiceParams: params,
		now:           time.Now,
	}
}

func (s *aggregationService) GetDashboardKPIs(ctx context.Context) (*dto.DashboardKPIsResponse, error) {
	now := s.now().UTC()
	key := cache.GenerateKey(cache.PrefixDashboard, "kpis", types.MonthOf(now).String())
	if cached, ok := s.cacheGet(ctx, key); ok {
		if resp, ok := cached.(*dto.DashboardKPIsResponse); ok {
			return resp, nil
		}
	}

	customers, err := s.CustomerRepo.ListAll(ctx, types.NewNoLimitCustomerFilter())
	if err != nil {
		return nil, err
	}
	payments, err := s.PaymentRepo.ListAll(ctx, types.NewNoLimitPaymentFilter())
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardKPIsResponse{
		KPIs:        aggregation.DashboardKPIs(customers, payments, now),
		GeneratedAt: now,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

func (s *aggregationService) GetOutstanding(ctx context.Context, customerID string) (*dto.OutstandingResponse, error) {
	c, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateKey(cache.PrefixOutstanding, customerID)
	if cached, ok := s.cacheGet(ctx, key); ok {
		if resp, ok := cached.(*dto.OutstandingResponse); ok {
			return resp, nil
		}
	}

	invoices, payments, err := s.customerLedger(ctx, customerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.OutstandingResponse{
		CustomerID:   c.ContactID,
		CustomerName: c.DisplayName(),
		Outstanding:  aggregation.Outstanding(invoices, payments, customerID),
		CurrencyCode: c.CurrencyCode,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

func (s *aggregationService) GetMonthlyPaid(ctx context.Context, req *dto.MonthlyPaidRequest) (*dto.MonthlyPaidResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	month := types.MonthOf(s.now())
	if req.Month != "" {
		m, err := types.ParseMonth(req.Month)
		if err != nil {
			return nil, err
		}
		month = m
	}
	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	filter := types.NewNoLimitPaymentFilter()
	filter.CustomerID = req.CustomerID
	filter.Month = month.String()
	payments, err := s.PaymentRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.MonthlyPaidResponse{
		CustomerID: req.CustomerID,
		Month:      month.String(),
		Amount:     aggregation.MonthlyPaid(payments, req.CustomerID, month),
	}, nil
}

func (s *aggregationService) ListUnpaid(ctx context.Context, month types.Month) ([]*customer.Customer, error) {
	customers, err := s.CustomerRepo.ListAll(ctx, types.NewNoLimitCustomerFilter())
	if err != nil {
		return nil, err
	}
	filter := types.NewNoLimitPaymentFilter()
	filter.Month = month.String()
	payments, err := s.PaymentRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return aggregation.UnpaidForMonth(customers, payments, month), nil
}

func (s *aggregationService) OutstandingByCustomer(ctx context.Context) (map[string]float64, error) {
	invoices, err := s.InvoiceRepo.ListAll(ctx, types.NewNoLimitInvoiceFilter())
	if err != nil {
		return nil, err
	}
	payments, err := s.PaymentRepo.ListAll(ctx, types.NewNoLimitPaymentFilter())
	if err != nil {
		return nil, err
	}
	return aggregation.OutstandingByCustomer(invoices, payments), nil
}

func (s *aggregationService) customerLedger(ctx context.Context, customerID string) ([]*invoice.Invoice, []*payment.Payment, error) {
	invoiceFilter := types.NewNoLimitInvoiceFilter()
	invoiceFilter.CustomerID = customerID
	invoices, err := s.InvoiceRepo.ListAll(ctx, invoiceFilter)
	if err != nil {
		return nil, nil, err
	}

	paymentFilter := types.NewNoLimitPaymentFilter()
	paymentFilter.CustomerID = customerID
	payments, err := s.PaymentRepo.ListAll(ctx, paymentFilter)
	if err != nil {
		return nil, nil, err
	}
	return invoices, payments, nil
}

func (s *aggregationService) cacheGet(ctx context.Context, key string) (interface{}, bool) {
	if s.Cache == nil {
		return nil, false
	}
	return s.Cache.Get(ctx, key)
}

func (s *aggregationService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.Cache == nil {
		return
	}
	s.Cache.Set(ctx, key, value, 0)
}

// invalidateBalances drops cached figures after a payment or customer change
func invalidateBalances(ctx context.Context, params ServiceParams) {
	if params.Cache == nil {
		return
	}
	params.Cache.DeleteByPrefix(ctx, cache.PrefixDashboard)
	params.Cache.DeleteByPrefix(ctx, cache.PrefixOutstanding)
}
