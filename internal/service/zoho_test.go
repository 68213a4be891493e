package service

import (
	"testing"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/suite"
)

type ZohoServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *zohoService
	now     time.Time
}

func TestZohoService(t *testing.T) {
	suite.Run(t, new(ZohoServiceSuite))
}

func (s *ZohoServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)

	params := newTestParams(&s.BaseServiceTestSuite)
	clock := &fakeClock{}
	tokens := newTokenManager(params, func() time.Time { return s.now }, clock.AfterFunc)
	s.service = NewZohoService(params, tokens, NewSyncService(params)).(*zohoService)
	s.service.now = func() time.Time { return s.now }

	z := s.GetMocks().Zoho
	z.ExchangeResponse = &zoho.TokenResponse{AccessToken: "access_1", RefreshToken: "refresh_1", ExpiresIn: 3600}
	z.RefreshResponse = &zoho.TokenResponse{AccessToken: "access_2", ExpiresIn: 3600}
	z.Contacts = []zoho.Contact{{ContactID: "C1", ContactName: "Asha Rao"}}
	z.Payments = []zoho.CustomerPayment{
		{PaymentID: "P1", CustomerID: "C1", Amount: 100, Date: "2024-05-02"},
		{PaymentID: "P2", CustomerID: "C1", Amount: 100, Date: "2024-04-30"},
	}
}

func (s *ZohoServiceSuite) authorize() {
	_, err := s.service.HandleCallback(s.GetContext(), "code")
	s.Require().NoError(err)
}

func (s *ZohoServiceSuite) TestPassthroughRequiresAuthorization() {
	_, err := s.service.ListCustomers(s.GetContext())
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.service.SyncNow(s.GetContext())
	s.True(ierr.IsPermissionDenied(err))
}

func (s *ZohoServiceSuite) TestCallbackRequiresCode() {
	_, err := s.service.HandleCallback(s.GetContext(), "")
	s.True(ierr.IsValidation(err))
}

func (s *ZohoServiceSuite) TestCallbackAuthorizes() {
	s.False(s.service.TokenStatus(s.GetContext()).Valid)

	status, err := s.service.HandleCallback(s.GetContext(), "code")
	s.Require().NoError(err)
	s.True(status.Valid)

	refreshed, err := s.service.RefreshToken(s.GetContext())
	s.Require().NoError(err)
	s.Equal(types.TokenStateAuthorized, refreshed.State)
	s.Equal([]string{"refresh_1"}, s.GetMocks().Zoho.RefreshTokens())
}

func (s *ZohoServiceSuite) TestListCustomers() {
	s.authorize()

	resp, err := s.service.ListCustomers(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, resp.Count)
	s.Equal("C1", resp.Items[0].ContactID)
}

func (s *ZohoServiceSuite) TestListInvoicesNeedsCustomer() {
	s.authorize()

	_, err := s.service.ListInvoices(s.GetContext(), &dto.ZohoInvoicesRequest{})
	s.True(ierr.IsValidation(err))

	resp, err := s.service.ListInvoices(s.GetContext(), &dto.ZohoInvoicesRequest{CustomerID: "C1"})
	s.Require().NoError(err)
	s.Empty(resp.Items)
	s.NotNil(resp.Items)
}

func (s *ZohoServiceSuite) TestListPaymentsDefaultsToCurrentMonth() {
	s.authorize()

	resp, err := s.service.ListPayments(s.GetContext(), &dto.ZohoPaymentsRequest{})
	s.Require().NoError(err)
	s.Require().Equal(1, resp.Count)
	s.Equal("P1", resp.Items[0].PaymentID)

	windows := s.GetMocks().Zoho.PaymentWindows()
	s.Require().Len(windows, 1)
	s.Equal(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), windows[0].Start)
	s.Equal(time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), windows[0].End)
}

func (s *ZohoServiceSuite) TestListPaymentsRange() {
	s.authorize()

	resp, err := s.service.ListPayments(s.GetContext(), &dto.ZohoPaymentsRequest{DateStart: "2024-04-01", DateEnd: "2024-05-31"})
	s.Require().NoError(err)
	s.Equal(2, resp.Count)

	_, err = s.service.ListPayments(s.GetContext(), &dto.ZohoPaymentsRequest{DateStart: "2024-05-31", DateEnd: "2024-05-01"})
	s.True(ierr.IsValidation(err))
}
