package service

import (
	"sync"
	"testing"
	"time"

	"github.com/feesync/feesync/internal/domain/token"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/testutil"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

// fakeTimer records scheduled refreshes instead of running them
type fakeTimer struct {
	delay   time.Duration
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fire: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

type TokenManagerSuite struct {
	testutil.BaseServiceTestSuite
	manager *tokenManager
	clock   *fakeClock
	now     time.Time
}

func TestTokenManager(t *testing.T) {
	suite.Run(t, new(TokenManagerSuite))
}

func (s *TokenManagerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.GetConfig().Zoho.RefreshLead = 5 * time.Minute
	s.now = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	s.newManager()

	z := s.GetMocks().Zoho
	z.ExchangeResponse = &zoho.TokenResponse{AccessToken: "access_1", RefreshToken: "refresh_1", ExpiresIn: 3600}
	z.RefreshResponse = &zoho.TokenResponse{AccessToken: "access_2", ExpiresIn: 3600}
	z.ExchangeErr = nil
	z.RefreshErr = nil
}

func (s *TokenManagerSuite) newManager() {
	s.clock = &fakeClock{}
	s.manager = newTokenManager(newTestParams(&s.BaseServiceTestSuite), func() time.Time { return s.now }, s.clock.AfterFunc)
}

func (s *TokenManagerSuite) TestStartsUninitialized() {
	s.NoError(s.manager.Load(s.GetContext()))
	s.Nil(s.manager.Current())
	s.Equal(types.TokenStateUninitialized, s.manager.Status().State)
	s.Zero(s.clock.count())
}

func (s *TokenManagerSuite) TestExchangeSchedulesRefresh() {
	status, err := s.manager.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)
	s.True(status.Valid)
	s.Equal(types.TokenStateAuthorized, status.State)
	s.Equal("org_test", status.OrganizationID)

	timer := s.clock.last()
	s.Require().NotNil(timer)
	s.Equal(3300*time.Second, timer.delay)
	s.Equal(s.now.Add(3300*time.Second), *status.NextRefreshAt)

	stored, err := s.GetStores().TokenRepo.GetLatest(s.GetContext())
	s.Require().NoError(err)
	s.Equal("access_1", stored.AccessToken)
	s.Equal("refresh_1", stored.RefreshToken)
	s.Equal(s.now.Add(time.Hour), stored.TokenExpiry)

	creds := s.manager.Current()
	s.Require().NotNil(creds)
	s.Equal("access_1", creds.AccessToken)
}

func (s *TokenManagerSuite) TestRefreshKeepsRefreshToken() {
	_, err := s.manager.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)

	s.now = s.now.Add(55 * time.Minute)
	s.clock.last().fire()

	s.Equal([]string{"refresh_1"}, s.GetMocks().Zoho.RefreshTokens())
	stored, err := s.GetStores().TokenRepo.GetLatest(s.GetContext())
	s.Require().NoError(err)
	s.Equal("access_2", stored.AccessToken)
	s.Equal("refresh_1", stored.RefreshToken)
	s.Equal(s.now, stored.LastRefreshed)
	s.Equal(3300*time.Second, s.clock.last().delay)
	s.Equal(2, s.clock.count())
}

func (s *TokenManagerSuite) TestRestartReschedulesFromStoredExpiry() {
	s.Require().NoError(s.GetStores().TokenRepo.Save(s.GetContext(), &token.Token{
		AccessToken:  "stored",
		RefreshToken: "refresh_stored",
		TokenExpiry:  s.now.Add(20 * time.Minute),
	}))

	s.Require().NoError(s.manager.Load(s.GetContext()))
	s.Equal(types.TokenStateAuthorized, s.manager.Status().State)
	s.Equal(15*time.Minute, s.clock.last().delay)
	s.Equal("stored", s.manager.Current().AccessToken)
	s.Equal("org_test", s.manager.Current().OrganizationID)
}

func (s *TokenManagerSuite) TestRestartWithExpiredTokenRefreshesImmediately() {
	s.Require().NoError(s.GetStores().TokenRepo.Save(s.GetContext(), &token.Token{
		AccessToken:  "stored",
		RefreshToken: "refresh_stored",
		TokenExpiry:  s.now.Add(-time.Hour),
	}))

	s.Require().NoError(s.manager.Load(s.GetContext()))
	s.Equal(time.Duration(0), s.clock.last().delay)
	s.False(s.manager.Status().Valid)
}

func (s *TokenManagerSuite) TestFailedRefreshKeepsPreviousToken() {
	_, err := s.manager.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)
	s.GetMocks().Zoho.RefreshErr = ierr.NewError("invalid_code").Mark(ierr.ErrHTTPClient)

	err = s.manager.Refresh(s.GetContext())
	s.Error(err)

	status := s.manager.Status()
	s.Equal(types.TokenStateFailed, status.State)
	s.NotEmpty(status.LastError)
	s.True(status.Valid)
	s.Nil(status.NextRefreshAt)
	s.Equal("access_1", s.manager.Current().AccessToken)

	stored, err := s.GetStores().TokenRepo.GetLatest(s.GetContext())
	s.Require().NoError(err)
	s.Equal("access_1", stored.AccessToken)
}

func (s *TokenManagerSuite) TestReauthorizationDuringRefreshWins() {
	_, err := s.manager.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)

	z := s.GetMocks().Zoho
	z.OnRefresh = func() {
		z.ExchangeResponse = &zoho.TokenResponse{AccessToken: "access_new", RefreshToken: "refresh_new", ExpiresIn: 7200}
		_, err := s.manager.ExchangeCode(s.GetContext(), "second_code")
		s.Require().NoError(err)
	}

	s.Require().NoError(s.manager.Refresh(s.GetContext()))

	s.Equal("access_new", s.manager.Current().AccessToken)
	status := s.manager.Status()
	s.Equal(types.TokenStateAuthorized, status.State)
	s.Equal(s.now.Add(2*time.Hour), *status.ExpiresAt)
	s.Equal(2*time.Hour-5*time.Minute, s.clock.last().delay)

	stored, err := s.GetStores().TokenRepo.GetLatest(s.GetContext())
	s.Require().NoError(err)
	s.Equal("access_new", stored.AccessToken)
	s.Equal("refresh_new", stored.RefreshToken)
}

func (s *TokenManagerSuite) TestScheduledFailureNotifies() {
	_, err := s.manager.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)
	s.GetMocks().Zoho.RefreshErr = ierr.NewError("invalid_code").Mark(ierr.ErrHTTPClient)

	s.clock.last().fire()

	n, err := s.GetStores().NotificationRepo.Count(s.GetContext(), &types.NotificationFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		Type:        lo.ToPtr(types.NotificationTypeAuth),
	})
	s.Require().NoError(err)
	// one for the authorization, one for the failed refresh
	s.Equal(2, n)
}

func (s *TokenManagerSuite) TestRefreshWithoutTokenFails() {
	err := s.manager.Refresh(s.GetContext())
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TokenManagerSuite) TestExchangeFailureLeavesStateUntouched() {
	s.GetMocks().Zoho.ExchangeErr = ierr.NewError("invalid_code").Mark(ierr.ErrHTTPClient)

	_, err := s.manager.ExchangeCode(s.GetContext(), "bad")
	s.Error(err)
	s.Nil(s.manager.Current())
	s.Equal(types.TokenStateUninitialized, s.manager.Status().State)
}

func (s *TokenManagerSuite) TestStopCancelsTimer() {
	_, err := s.manager.ExchangeCode(s.GetContext(), "code")
	s.Require().NoError(err)
	timer := s.clock.last()

	s.manager.Stop()
	s.True(timer.stopped)
	s.Nil(s.manager.Status().NextRefreshAt)

	s.Require().NoError(s.manager.Refresh(s.GetContext()))
	s.Equal(1, s.clock.count())
}
