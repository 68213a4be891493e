package service

import (
	"testing"
	"time"

	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/suite"
)

type SyncSchedulerSuite struct {
	testutil.BaseServiceTestSuite
	sync      *syncService
	tokens    *tokenManager
	scheduler *SyncScheduler
	now       time.Time
}

func TestSyncScheduler(t *testing.T) {
	suite.Run(t, new(SyncSchedulerSuite))
}

func (s *SyncSchedulerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	s.GetConfig().Sync.Strategy = types.SyncStrategyUpsert

	params := newTestParams(&s.BaseServiceTestSuite)
	s.sync = NewSyncService(params).(*syncService)
	s.sync.now = func() time.Time { return s.now }
	clock := &fakeClock{}
	s.tokens = newTokenManager(params, func() time.Time { return s.now }, clock.AfterFunc)
	s.scheduler = NewSyncScheduler(params, s.sync, s.tokens)

	z := s.GetMocks().Zoho
	z.ExchangeResponse = &zoho.TokenResponse{AccessToken: "access_1", RefreshToken: "refresh_1", ExpiresIn: 3600}
	z.Contacts = []zoho.Contact{
		{ContactID: "C1", ContactName: "Asha Rao", Email: "asha@example.com"},
	}
	z.Invoices = map[string][]zoho.Invoice{
		"C1": {{InvoiceID: "I1", CustomerID: "C1", Total: 1000, Balance: 1000, Date: "2024-06-01"}},
	}
}

func (s *SyncSchedulerSuite) authorize() {
	_, err := s.tokens.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)
}

func (s *SyncSchedulerSuite) syncLogs() int {
	n, err := s.GetStores().SyncLogRepo.Count(s.GetContext(), nil)
	s.Require().NoError(err)
	return n
}

func (s *SyncSchedulerSuite) TestSkipsWhenUnauthorized() {
	s.scheduler.RunOnce(s.GetContext())

	s.Zero(s.syncLogs())
	s.Empty(s.GetMocks().Zoho.InvoiceCalls())
	s.Empty(s.GetMocks().Zoho.PaymentWindows())
}

func (s *SyncSchedulerSuite) TestRunsWithStoredGrant() {
	s.authorize()

	s.scheduler.RunOnce(s.GetContext())

	logs, err := s.sync.ListLogs(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(logs.Items, 1)
	s.Equal(types.SyncTriggerScheduled, logs.Items[0].Trigger)
	s.Equal(types.SyncStatusSuccess, logs.Items[0].Status)
	s.Equal([]string{"C1"}, s.GetMocks().Zoho.InvoiceCalls())
}

func (s *SyncSchedulerSuite) TestSkipsWhileSyncRunning() {
	s.authorize()

	block := make(chan struct{})
	s.GetMocks().Zoho.Block = block

	done := make(chan error, 1)
	go func() {
		_, err := s.sync.RunFullSync(s.GetContext(), s.tokens.Current(), types.SyncTriggerManual)
		done <- err
	}()
	s.Eventually(s.sync.IsRunning, time.Second, 5*time.Millisecond)

	returned := make(chan struct{})
	go func() {
		s.scheduler.RunOnce(s.GetContext())
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		s.FailNow("scheduled run waited for the running sync")
	}
	s.Equal(1, s.syncLogs())

	close(block)
	s.Require().NoError(<-done)

	logs, err := s.sync.ListLogs(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(logs.Items, 1)
	s.Equal(types.SyncTriggerManual, logs.Items[0].Trigger)
}

func (s *SyncSchedulerSuite) TestZeroIntervalDisablesTicker() {
	s.scheduler.interval = 0
	s.scheduler.Start()
	s.Nil(s.scheduler.cancel)
	s.scheduler.Stop()
}
