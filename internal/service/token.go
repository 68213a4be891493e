package service

import (
	"context"
	"sync"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/token"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

const (
	defaultRefreshLead = 5 * time.Minute
	// used when the accounts server omits expires_in
	defaultTokenLifetime = time.Hour
)

// TokenManager owns the provider OAuth grant and keeps it refreshed
type TokenManager interface {
	// Load restores the persisted grant at startup and schedules its refresh
	Load(ctx context.Context) error
	ExchangeCode(ctx context.Context, code string) (*dto.TokenStatusResponse, error)
	Refresh(ctx context.Context) error
	// Current returns the credentials for provider calls, nil before the first authorization
	Current() *zoho.Credentials
	Status() *dto.TokenStatusResponse
	Stop()
}

// Timer is the part of *time.Timer the manager uses
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

type tokenManager struct {
	ServiceParams

	mu          sync.Mutex
	state       types.TokenState
	token       *token.Token
	timer       Timer
	nextRefresh *time.Time
	lastErr     string
	stopped     bool
	// generation changes whenever a grant replaces the current one
	generation uint64

	lead      time.Duration
	now       func() time.Time
	afterFunc AfterFunc
}

func NewTokenManager(params ServiceParams) TokenManager {
	return newTokenManager(params, time.Now, func(d time.Duration, f func()) Timer {
		return time.AfterFunc(d, f)
	})
}

func newTokenManager(params ServiceParams, now func() time.Time, afterFunc AfterFunc) *tokenManager {
	lead := params.Config.Zoho.RefreshLead
	if lead <= 0 {
		lead = defaultRefreshLead
	}
	return &tokenManager{
		ServiceParams: params,
		state:         types.TokenStateUninitialized,
		lead:          lead,
		now:           now,
		afterFunc:     afterFunc,
	}
}

func (m *tokenManager) Load(ctx context.Context) error {
	t, err := m.TokenRepo.GetLatest(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			m.Logger.Infow("no stored zoho token, waiting for authorization")
			return nil
		}
		m.Logger.Warnw("failed to load stored zoho token", "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = t
	m.generation++
	m.state = types.TokenStateAuthorized
	delay := t.TokenExpiry.Sub(m.now()) - m.lead
	if delay < 0 {
		delay = 0
	}
	m.scheduleLocked(delay)

	m.Logger.Infow("restored zoho token",
		"expires_at", t.TokenExpiry,
		"refresh_in", delay,
	)
	return nil
}

func (m *tokenManager) ExchangeCode(ctx context.Context, code string) (*dto.TokenStatusResponse, error) {
	resp, err := m.ZohoClient.ExchangeCode(ctx, code)
	if err != nil {
		m.Logger.Errorw("zoho authorization code exchange failed", "error", err)
		return nil, err
	}

	now := m.now().UTC()
	lifetime := lifetimeOf(resp)
	t := &token.Token{
		AccessToken:    resp.AccessToken,
		RefreshToken:   resp.RefreshToken,
		OrganizationID: m.Config.Zoho.OrganizationID,
		TokenExpiry:    now.Add(lifetime),
		LastRefreshed:  now,
		UpdatedAt:      now,
	}

	m.mu.Lock()
	// a re-consent without offline access returns no refresh token
	if t.RefreshToken == "" && m.token != nil {
		t.RefreshToken = m.token.RefreshToken
	}
	if err := m.TokenRepo.Save(ctx, t); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.token = t
	m.generation++
	m.state = types.TokenStateAuthorized
	m.lastErr = ""
	m.scheduleLocked(refreshDelay(lifetime, m.lead))
	m.mu.Unlock()

	m.Logger.Infow("zoho authorized", "expires_at", t.TokenExpiry)
	notify(ctx, m.ServiceParams, types.NotificationTypeAuth, "Zoho account authorized", nil)
	return m.Status(), nil
}

func (m *tokenManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.token == nil || m.token.RefreshToken == "" {
		m.mu.Unlock()
		return ierr.NewError("zoho is not authorized").
			WithHint("Authorize Zoho before refreshing the token").
			Mark(ierr.ErrInvalidOperation)
	}
	if m.state == types.TokenStateRefreshing {
		m.mu.Unlock()
		return ierr.NewError("token refresh already in progress").
			WithHint("A token refresh is already running").
			Mark(ierr.ErrInvalidOperation)
	}
	previous := *m.token
	generation := m.generation
	m.state = types.TokenStateRefreshing
	m.mu.Unlock()

	resp, err := m.ZohoClient.RefreshAccessToken(ctx, previous.RefreshToken)
	if err != nil {
		m.mu.Lock()
		if m.generation != generation {
			m.mu.Unlock()
			m.Logger.Warnw("zoho token refresh failed after a new authorization, ignoring", "error", err)
			return err
		}
		m.state = types.TokenStateFailed
		m.lastErr = err.Error()
		m.nextRefresh = nil
		m.mu.Unlock()
		m.Logger.Errorw("zoho token refresh failed, keeping the previous token",
			"error", err,
			"expires_at", previous.TokenExpiry,
		)
		return err
	}

	now := m.now().UTC()
	lifetime := lifetimeOf(resp)
	refreshed := previous
	refreshed.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		refreshed.RefreshToken = resp.RefreshToken
	}
	refreshed.TokenExpiry = now.Add(lifetime)
	refreshed.LastRefreshed = now
	refreshed.UpdatedAt = now

	m.mu.Lock()
	if m.generation != generation {
		m.mu.Unlock()
		m.Logger.Infow("discarding zoho token refresh superseded by a new authorization")
		return nil
	}
	if err := m.TokenRepo.Save(ctx, &refreshed); err != nil {
		m.Logger.Errorw("failed to persist refreshed zoho token", "error", err)
	}
	m.token = &refreshed
	m.state = types.TokenStateAuthorized
	m.lastErr = ""
	m.scheduleLocked(refreshDelay(lifetime, m.lead))
	m.mu.Unlock()

	m.Logger.Infow("zoho token refreshed", "expires_at", refreshed.TokenExpiry)
	return nil
}

func (m *tokenManager) Current() *zoho.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return nil
	}
	orgID := m.token.OrganizationID
	if orgID == "" {
		orgID = m.Config.Zoho.OrganizationID
	}
	return &zoho.Credentials{
		AccessToken:    m.token.AccessToken,
		OrganizationID: orgID,
	}
}

func (m *tokenManager) Status() *dto.TokenStatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := &dto.TokenStatusResponse{
		State:     m.state,
		LastError: m.lastErr,
	}
	if m.nextRefresh != nil {
		status.NextRefreshAt = lo.ToPtr(*m.nextRefresh)
	}
	if m.token == nil {
		return status
	}

	now := m.now()
	status.OrganizationID = m.token.OrganizationID
	status.LastRefreshed = lo.ToPtr(m.token.LastRefreshed)
	status.ExpiresAt = lo.ToPtr(m.token.TokenExpiry)
	status.Valid = now.Before(m.token.TokenExpiry)
	if status.Valid {
		status.ExpiresInSeconds = int64(m.token.TokenExpiry.Sub(now).Seconds())
	}
	return status
}

func (m *tokenManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.nextRefresh = nil
}

// scheduleLocked replaces the pending refresh; callers hold m.mu
func (m *tokenManager) scheduleLocked(delay time.Duration) {
	if m.stopped {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.nextRefresh = lo.ToPtr(m.now().Add(delay).UTC())
	m.timer = m.afterFunc(delay, m.onTimer)
}

func (m *tokenManager) onTimer() {
	ctx := types.SetUserID(context.Background(), types.DefaultUserID)
	if err := m.Refresh(ctx); err != nil {
		notify(ctx, m.ServiceParams, types.NotificationTypeAuth, "Zoho token refresh failed. Re-authorize Zoho.", map[string]string{
			"error": err.Error(),
		})
	}
}

func lifetimeOf(resp *zoho.TokenResponse) time.Duration {
	if resp.ExpiresIn <= 0 {
		return defaultTokenLifetime
	}
	return time.Duration(resp.ExpiresIn) * time.Second
}

// refreshDelay is the lifetime minus the lead, never negative
func refreshDelay(lifetime, lead time.Duration) time.Duration {
	if d := lifetime - lead; d > 0 {
		return d
	}
	return 0
}
