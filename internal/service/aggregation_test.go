package service

import (
	"testing"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/suite"
)

type AggregationServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service *aggregationService
	now     time.Time
}

func TestAggregationService(t *testing.T) {
	suite.Run(t, new(AggregationServiceSuite))
}

func (s *AggregationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.now = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	s.service = NewAggregationService(s.params).(*aggregationService)
	s.service.now = func() time.Time { return s.now }
	s.seed()
}

func (s *AggregationServiceSuite) seed() {
	ctx := s.GetContext()
	stores := s.GetStores()

	for _, c := range []*customer.Customer{
		{ContactID: "C1", ContactName: "Asha", Email: "asha@example.com", CurrencyCode: "INR"},
		{ContactID: "C2", ContactName: "Ravi", Email: "ravi@example.com"},
		{ContactID: "C3", ContactName: "No Mail"},
	} {
		s.Require().NoError(stores.CustomerRepo.Create(ctx, c))
	}

	invoices := stores.InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	invoices.Put(ctx, "I1", &invoice.Invoice{InvoiceID: "I1", CustomerID: "C1", Total: 1000, Date: s.now})
	invoices.Put(ctx, "I2", &invoice.Invoice{InvoiceID: "I2", CustomerID: "C2", Total: 500, Date: s.now})

	s.addPayment("P1", "C1", 300, time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC))
	s.addPayment("P2", "C1", 200, time.Date(2024, time.April, 28, 0, 0, 0, 0, time.UTC))
	s.addPayment("P3", "C2", 700, time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC))
}

func (s *AggregationServiceSuite) addPayment(id, customerID string, amount float64, date time.Time) {
	s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), &payment.Payment{
		PaymentID:  id,
		CustomerID: customerID,
		Amount:     amount,
		Date:       date,
		Source:     types.SourceZoho,
	}))
}

func (s *AggregationServiceSuite) TestDashboardKPIs() {
	resp, err := s.service.GetDashboardKPIs(s.GetContext())
	s.Require().NoError(err)

	s.Equal(3, resp.TotalStudents)
	s.Equal("2024-05", resp.Month)
	s.Equal(1, resp.PaidThisMonth)
	s.Equal(300.0, resp.AmountThisMonth)
	s.Equal("2024-04", resp.PreviousMonth)
	s.Equal(2, resp.PaidLastMonth)
	s.Equal(900.0, resp.AmountLastMonth)
	s.Equal(s.now, resp.GeneratedAt)
}

func (s *AggregationServiceSuite) TestDashboardKPIsCachedUntilInvalidated() {
	first, err := s.service.GetDashboardKPIs(s.GetContext())
	s.Require().NoError(err)

	s.addPayment("P4", "C2", 50, s.now)

	cached, err := s.service.GetDashboardKPIs(s.GetContext())
	s.Require().NoError(err)
	s.Equal(first.AmountThisMonth, cached.AmountThisMonth)

	invalidateBalances(s.GetContext(), s.params)

	fresh, err := s.service.GetDashboardKPIs(s.GetContext())
	s.Require().NoError(err)
	s.Equal(350.0, fresh.AmountThisMonth)
	s.Equal(2, fresh.PaidThisMonth)
}

func (s *AggregationServiceSuite) TestOutstanding() {
	resp, err := s.service.GetOutstanding(s.GetContext(), "C1")
	s.Require().NoError(err)
	s.Equal(500.0, resp.Outstanding)
	s.Equal("Asha", resp.CustomerName)
	s.Equal("INR", resp.CurrencyCode)

	// overpaid balances are floored at zero
	resp, err = s.service.GetOutstanding(s.GetContext(), "C2")
	s.Require().NoError(err)
	s.Equal(0.0, resp.Outstanding)

	_, err = s.service.GetOutstanding(s.GetContext(), "missing")
	s.True(ierr.IsNotFound(err))
}

func (s *AggregationServiceSuite) TestMonthlyPaid() {
	testCases := []struct {
		name    string
		request dto.MonthlyPaidRequest
		want    float64
		month   string
		wantErr func(error) bool
	}{
		{
			name:    "defaults_to_current_month",
			request: dto.MonthlyPaidRequest{CustomerID: "C1"},
			want:    300,
			month:   "2024-05",
		},
		{
			name:    "explicit_month",
			request: dto.MonthlyPaidRequest{CustomerID: "C1", Month: "2024-04"},
			want:    200,
			month:   "2024-04",
		},
		{
			name:    "no_payments",
			request: dto.MonthlyPaidRequest{CustomerID: "C3", Month: "2024-05"},
			want:    0,
			month:   "2024-05",
		},
		{
			name:    "malformed_month",
			request: dto.MonthlyPaidRequest{CustomerID: "C1", Month: "2024-13"},
			wantErr: ierr.IsValidation,
		},
		{
			name:    "missing_customer_id",
			request: dto.MonthlyPaidRequest{Month: "2024-05"},
			wantErr: ierr.IsValidation,
		},
		{
			name:    "unknown_customer",
			request: dto.MonthlyPaidRequest{CustomerID: "missing"},
			wantErr: ierr.IsNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, err := s.service.GetMonthlyPaid(s.GetContext(), &tc.request)
			if tc.wantErr != nil {
				s.Require().Error(err)
				s.True(tc.wantErr(err), "unexpected error: %v", err)
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, resp.Amount)
			s.Equal(tc.month, resp.Month)
		})
	}
}

func (s *AggregationServiceSuite) TestListUnpaid() {
	unpaid, err := s.service.ListUnpaid(s.GetContext(), types.MonthOf(s.now))
	s.Require().NoError(err)
	s.Require().Len(unpaid, 1)
	s.Equal("C2", unpaid[0].ContactID)

	april, err := types.ParseMonth("2024-04")
	s.Require().NoError(err)
	unpaid, err = s.service.ListUnpaid(s.GetContext(), april)
	s.Require().NoError(err)
	s.Empty(unpaid)
}

func (s *AggregationServiceSuite) TestOutstandingByCustomer() {
	balances, err := s.service.OutstandingByCustomer(s.GetContext())
	s.Require().NoError(err)
	s.Equal(map[string]float64{"C1": 500, "C2": 0}, balances)
}
