package service

import (
	"github.com/feesync/feesync/internal/testutil"
)

// newTestParams wires the in-memory stores and fakes of a suite into ServiceParams
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	mocks := s.GetMocks()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetCache(),
		stores.CustomerRepo,
		stores.InvoiceRepo,
		stores.PaymentRepo,
		stores.TokenRepo,
		stores.NotificationRepo,
		stores.UserRepo,
		stores.SyncLogRepo,
		mocks.Zoho,
		mocks.Email,
		mocks.Messaging,
		s.GetAuthProvider(),
	)
}
