package service

import (
	"context"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/types"
)

// ZohoService exposes the provider connection to admins: the OAuth handshake,
// the token status, unmodified provider listings and the manual sync.
type ZohoService interface {
	AuthURL(ctx context.Context) *dto.AuthURLResponse
	HandleCallback(ctx context.Context, code string) (*dto.TokenStatusResponse, error)
	RefreshToken(ctx context.Context) (*dto.TokenStatusResponse, error)
	TokenStatus(ctx context.Context) *dto.TokenStatusResponse

	ListCustomers(ctx context.Context) (*dto.ZohoListResponse[zoho.Contact], error)
	ListInvoices(ctx context.Context, req *dto.ZohoInvoicesRequest) (*dto.ZohoListResponse[zoho.Invoice], error)
	ListPayments(ctx context.Context, req *dto.ZohoPaymentsRequest) (*dto.ZohoListResponse[zoho.CustomerPayment], error)

	SyncNow(ctx context.Context) (*dto.SyncResponse, error)
}

type zohoService struct {
	ServiceParams
	tokens TokenManager
	sync   SyncService
	now    func() time.Time
}

func NewZohoService(params ServiceParams, tokens TokenManager, sync SyncService) ZohoService {
	return &zohoService{
		ServiceParams: params,
		tokens:        tokens,
		sync:          sync,
		now:           time.Now,
	}
}

func (s *zohoService) AuthURL(ctx context.Context) *dto.AuthURLResponse {
	return &dto.AuthURLResponse{URL: s.ZohoClient.AuthURL(types.GetRequestID(ctx))}
}

func (s *zohoService) HandleCallback(ctx context.Context, code string) (*dto.TokenStatusResponse, error) {
	if code == "" {
		return nil, ierr.NewError("missing authorization code").
			WithHint("Authorization code is required").
			Mark(ierr.ErrValidation)
	}
	return s.tokens.ExchangeCode(ctx, code)
}

func (s *zohoService) RefreshToken(ctx context.Context) (*dto.TokenStatusResponse, error) {
	if err := s.tokens.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.tokens.Status(), nil
}

func (s *zohoService) TokenStatus(ctx context.Context) *dto.TokenStatusResponse {
	return s.tokens.Status()
}

func (s *zohoService) credentials() (zoho.Credentials, error) {
	creds := s.tokens.Current()
	if creds == nil || creds.AccessToken == "" {
		return zoho.Credentials{}, ierr.NewError("zoho is not authorized").
			WithHint("Connect Zoho before using the provider endpoints").
			Mark(ierr.ErrPermissionDenied)
	}
	return *creds, nil
}

func (s *zohoService) ListCustomers(ctx context.Context) (*dto.ZohoListResponse[zoho.Contact], error) {
	creds, err := s.credentials()
	if err != nil {
		return nil, err
	}
	contacts, err := s.ZohoClient.ListCustomers(ctx, creds)
	if err != nil {
		return nil, err
	}
	return dto.NewZohoListResponse(contacts), nil
}

func (s *zohoService) ListInvoices(ctx context.Context, req *dto.ZohoInvoicesRequest) (*dto.ZohoListResponse[zoho.Invoice], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	creds, err := s.credentials()
	if err != nil {
		return nil, err
	}
	invoices, err := s.ZohoClient.ListInvoices(ctx, creds, req.CustomerID)
	if err != nil {
		return nil, err
	}
	return dto.NewZohoListResponse(invoices), nil
}

func (s *zohoService) ListPayments(ctx context.Context, req *dto.ZohoPaymentsRequest) (*dto.ZohoListResponse[zoho.CustomerPayment], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	month := types.MonthOf(s.now())
	start, end := month.Start(), month.LastDay()
	var err error
	if req.DateStart != "" {
		if start, err = types.ParseDate(req.DateStart); err != nil {
			return nil, err
		}
	}
	if req.DateEnd != "" {
		if end, err = types.ParseDate(req.DateEnd); err != nil {
			return nil, err
		}
	}
	if end.Before(start) {
		return nil, ierr.NewError("date_end before date_start").
			WithHint("date_end must not be before date_start").
			Mark(ierr.ErrValidation)
	}

	creds, err := s.credentials()
	if err != nil {
		return nil, err
	}
	payments, err := s.ZohoClient.ListPayments(ctx, creds, start, end)
	if err != nil {
		return nil, err
	}
	return dto.NewZohoListResponse(payments), nil
}

func (s *zohoService) SyncNow(ctx context.Context) (*dto.SyncResponse, error) {
	return s.sync.RunFullSync(ctx, s.tokens.Current(), types.SyncTriggerManual)
}
