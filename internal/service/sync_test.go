package service

import (
	"sort"
	"testing"
	"time"

	"github.com/feesync/feesync/internal/aggregation"
	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/payment"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type SyncServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *syncService
	creds   *zoho.Credentials
	now     time.Time
}

func TestSyncService(t *testing.T) {
	suite.Run(t, new(SyncServiceSuite))
}

func (s *SyncServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	s.creds = &zoho.Credentials{AccessToken: "access", OrganizationID: "org_test"}
	s.GetConfig().Sync.Strategy = types.SyncStrategyUpsert
	s.GetConfig().Sync.PaymentMonths = types.SyncPaymentMonths
	s.newService()
	s.seedProvider()
}

func (s *SyncServiceSuite) newService() {
	s.service = NewSyncService(newTestParams(&s.BaseServiceTestSuite)).(*syncService)
	s.service.now = func() time.Time { return s.now }
}

func (s *SyncServiceSuite) seedProvider() {
	z := s.GetMocks().Zoho
	z.Contacts = []zoho.Contact{
		{ContactID: "C1", ContactName: "Asha Rao", Email: "asha@example.com", Mobile: "9876543210", CurrencyCode: "INR"},
		{ContactID: "C2", ContactName: "Vikram Iyer", Email: "vikram@example.com", CurrencyCode: "INR"},
	}
	z.Invoices = map[string][]zoho.Invoice{
		"C1": {{InvoiceID: "I1", InvoiceNumber: "INV-001", CustomerID: "C1", Total: 1000, Balance: 600, Date: "2024-06-01", Status: "partially_paid"}},
	}
	z.Payments = []zoho.CustomerPayment{
		{PaymentID: "P1", CustomerID: "C1", Amount: 400, Date: "2024-06-03"},
		// month boundaries
		{PaymentID: "P2", CustomerID: "C2", Amount: 100, Date: "2024-01-31"},
		{PaymentID: "P3", CustomerID: "C2", Amount: 100, Date: "2024-02-01"},
		{PaymentID: "P4", CustomerID: "C2", Amount: 50, Date: "2023-07-01"},
		// before the trailing window
		{PaymentID: "P5", CustomerID: "C2", Amount: 75, Date: "2023-06-30"},
	}
}

func (s *SyncServiceSuite) run() *dto.SyncResponse {
	resp, err := s.service.RunFullSync(s.GetContext(), s.creds, types.SyncTriggerManual)
	s.Require().NoError(err)
	return resp
}

func (s *SyncServiceSuite) paymentIDs() []string {
	payments, err := s.GetStores().PaymentRepo.ListAll(s.GetContext(), nil)
	s.Require().NoError(err)
	ids := lo.Map(payments, func(p *payment.Payment, _ int) string { return p.PaymentID })
	sort.Strings(ids)
	return ids
}

func (s *SyncServiceSuite) TestMirrorsProvider() {
	for _, strategy := range []types.SyncStrategy{types.SyncStrategyUpsert, types.SyncStrategyReplace} {
		s.Run(string(strategy), func() {
			s.ClearStores()
			s.GetConfig().Sync.Strategy = strategy
			s.newService()

			resp := s.run()
			s.True(resp.Success)
			s.Equal(strategy, resp.Strategy)
			s.Equal(2, resp.Customers)
			s.Equal(1, resp.Invoices)
			s.Equal(4, resp.Payments)
			s.Equal(12, resp.Months)
			s.Equal([]string{"P1", "P2", "P3", "P4"}, s.paymentIDs())

			c, err := s.GetStores().CustomerRepo.Get(s.GetContext(), "C1")
			s.Require().NoError(err)
			s.Equal(types.SourceZoho, c.Source)
		})
	}
}

func (s *SyncServiceSuite) TestPaymentWindowsCoverTwelveMonths() {
	s.run()

	windows := s.GetMocks().Zoho.PaymentWindows()
	s.Require().Len(windows, 12)
	s.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), windows[0].Start)
	s.Equal(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), windows[0].End)
	s.Equal(time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), windows[11].Start)
	for i := 1; i < len(windows); i++ {
		s.Equal(windows[i].End.AddDate(0, 0, 1), windows[i-1].Start, "windows must be contiguous")
	}
}

func (s *SyncServiceSuite) TestInvoicesFetchedPerCustomerInOrder() {
	s.run()
	s.Equal([]string{"C1", "C2"}, s.GetMocks().Zoho.InvoiceCalls())
}

func (s *SyncServiceSuite) TestPaymentCountMatchesProviderWindows() {
	// a payment listed twice by the provider is stored once
	z := s.GetMocks().Zoho
	z.Payments = append(z.Payments, z.Payments[0])

	resp := s.run()
	payments, err := s.GetStores().PaymentRepo.Count(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Equal(resp.Payments, payments)
	s.Equal(4, payments)
}

func (s *SyncServiceSuite) TestIdempotent() {
	for _, strategy := range []types.SyncStrategy{types.SyncStrategyUpsert, types.SyncStrategyReplace} {
		s.Run(string(strategy), func() {
			s.ClearStores()
			s.GetConfig().Sync.Strategy = strategy
			s.newService()

			first := s.run()
			firstIDs := s.paymentIDs()
			firstBalances := s.balances()

			second := s.run()
			s.Equal(first.Customers, second.Customers)
			s.Equal(first.Invoices, second.Invoices)
			s.Equal(first.Payments, second.Payments)
			s.Equal(0, second.Removed)
			s.Equal(firstIDs, s.paymentIDs())
			s.Equal(firstBalances, s.balances())
		})
	}
}

func (s *SyncServiceSuite) balances() map[string]float64 {
	invoices, err := s.GetStores().InvoiceRepo.ListAll(s.GetContext(), nil)
	s.Require().NoError(err)
	payments, err := s.GetStores().PaymentRepo.ListAll(s.GetContext(), nil)
	s.Require().NoError(err)
	return aggregation.OutstandingByCustomer(invoices, payments)
}

func (s *SyncServiceSuite) TestManualPaymentRemoved() {
	for _, strategy := range []types.SyncStrategy{types.SyncStrategyUpsert, types.SyncStrategyReplace} {
		s.Run(string(strategy), func() {
			s.ClearStores()
			s.GetConfig().Sync.Strategy = strategy
			s.newService()

			s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), &payment.Payment{
				PaymentID:  "manual_1",
				CustomerID: "C1",
				Amount:     250,
				Date:       s.now,
				Source:     types.SourceManual,
			}))

			s.run()
			_, err := s.GetStores().PaymentRepo.Get(s.GetContext(), "manual_1")
			s.True(ierr.IsNotFound(err))
		})
	}
}

func (s *SyncServiceSuite) TestProviderScenarioBalances() {
	s.run()

	b := s.balances()
	s.Equal(600.0, b["C1"])
	s.Equal(0.0, b["C2"])

	customers, err := s.GetStores().CustomerRepo.ListAll(s.GetContext(), nil)
	s.Require().NoError(err)
	payments, err := s.GetStores().PaymentRepo.ListAll(s.GetContext(), nil)
	s.Require().NoError(err)
	unpaid := aggregation.UnpaidForMonth(customers, payments, types.MonthOf(s.now))
	ids := lo.Map(unpaid, func(c *customer.Customer, _ int) string { return c.ContactID })
	s.Contains(ids, "C2")
	s.NotContains(ids, "C1")
}

func (s *SyncServiceSuite) TestUpsertKeepsStudentCredentials() {
	s.run()
	s.Require().NoError(s.GetStores().CustomerRepo.UpdateCredentials(s.GetContext(), "C1", &credential.Credentials{PasswordHash: "hash"}))

	s.run()
	c, err := s.GetStores().CustomerRepo.Get(s.GetContext(), "C1")
	s.Require().NoError(err)
	s.True(c.HasPassword())
}

func (s *SyncServiceSuite) TestRemovesCustomersGoneFromProvider() {
	s.run()
	s.GetMocks().Zoho.Contacts = s.GetMocks().Zoho.Contacts[:1]

	resp := s.run()
	s.Equal(1, resp.Removed)
	_, err := s.GetStores().CustomerRepo.Get(s.GetContext(), "C2")
	s.True(ierr.IsNotFound(err))
}

func (s *SyncServiceSuite) TestRequiresCredentials() {
	_, err := s.service.RunFullSync(s.GetContext(), nil, types.SyncTriggerManual)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.service.RunFullSync(s.GetContext(), &zoho.Credentials{}, types.SyncTriggerManual)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SyncServiceSuite) TestRejectsConcurrentSync() {
	block := make(chan struct{})
	s.GetMocks().Zoho.Block = block

	done := make(chan error, 1)
	go func() {
		_, err := s.service.RunFullSync(s.GetContext(), s.creds, types.SyncTriggerManual)
		done <- err
	}()
	s.Eventually(s.service.IsRunning, time.Second, 5*time.Millisecond)

	_, err := s.service.RunFullSync(s.GetContext(), s.creds, types.SyncTriggerScheduled)
	s.True(ierr.IsInvalidOperation(err))

	close(block)
	s.Require().NoError(<-done)
	s.False(s.service.IsRunning())
}

func (s *SyncServiceSuite) TestFailureRecordsStage() {
	s.GetMocks().Zoho.PaymentsErr = ierr.NewError("provider unavailable").Mark(ierr.ErrHTTPClient)

	_, err := s.service.RunFullSync(s.GetContext(), s.creds, types.SyncTriggerManual)
	s.True(ierr.IsHTTPClient(err))

	logs, err := s.service.ListLogs(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(logs.Items, 1)
	s.Equal(types.SyncStatusFailed, logs.Items[0].Status)
	s.Equal(types.SyncStageInvoices, logs.Items[0].Stage)
	s.NotEmpty(logs.Items[0].Error)

	n, err := s.GetStores().NotificationRepo.Count(s.GetContext(), &types.NotificationFilter{QueryFilter: types.NewNoLimitQueryFilter()})
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *SyncServiceSuite) TestSuccessFlushesCache() {
	s.GetCache().Set(s.GetContext(), "dashboard:v1:kpis", "stale", 0)

	s.run()
	_, ok := s.GetCache().Get(s.GetContext(), "dashboard:v1:kpis")
	s.False(ok)
}
