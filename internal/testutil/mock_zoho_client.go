package testutil

import (
	"context"
	"sync"
	"time"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/integration/zoho"
	"github.com/feesync/feesync/internal/types"
)

// PaymentWindow is one date range the sync asked the provider for
type PaymentWindow struct {
	Start time.Time
	End   time.Time
}

// MockZohoClient implements zoho.ZohoClient over in-memory provider data
type MockZohoClient struct {
	mu sync.Mutex

	Contacts []zoho.Contact
	// Invoices are keyed by customer id
	Invoices map[string][]zoho.Invoice
	Payments []zoho.CustomerPayment

	CustomersErr error
	InvoicesErr  error
	PaymentsErr  error

	ExchangeResponse *zoho.TokenResponse
	ExchangeErr      error
	RefreshResponse  *zoho.TokenResponse
	RefreshErr       error

	// OnRefresh, when set, runs while a token refresh is in flight
	OnRefresh func()

	// Block, when set, is waited on before customers are returned
	Block chan struct{}

	invoiceCalls   []string
	paymentWindows []PaymentWindow
	refreshTokens  []string
	exchangedCodes []string
}

func NewMockZohoClient() *MockZohoClient {
	return &MockZohoClient{
		Invoices: make(map[string][]zoho.Invoice),
	}
}

func (m *MockZohoClient) ListCustomers(ctx context.Context, creds zoho.Credentials) ([]zoho.Contact, error) {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CustomersErr != nil {
		return nil, m.CustomersErr
	}
	return append([]zoho.Contact(nil), m.Contacts...), nil
}

func (m *MockZohoClient) ListInvoices(ctx context.Context, creds zoho.Credentials, customerID string) ([]zoho.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoiceCalls = append(m.invoiceCalls, customerID)
	if m.InvoicesErr != nil {
		return nil, m.InvoicesErr
	}
	return append([]zoho.Invoice(nil), m.Invoices[customerID]...), nil
}

// ListPayments returns the payments dated inside [dateStart, dateEnd], both days inclusive
func (m *MockZohoClient) ListPayments(ctx context.Context, creds zoho.Credentials, dateStart, dateEnd time.Time) ([]zoho.CustomerPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paymentWindows = append(m.paymentWindows, PaymentWindow{Start: dateStart, End: dateEnd})
	if m.PaymentsErr != nil {
		return nil, m.PaymentsErr
	}
	var out []zoho.CustomerPayment
	for _, p := range m.Payments {
		d, err := types.ParseDate(p.Date)
		if err != nil {
			return nil, err
		}
		if !d.Before(dateStart) && !d.After(dateEnd) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockZohoClient) AuthURL(state string) string {
	return "https://accounts.example.com/oauth/v2/auth?state=" + state
}

func (m *MockZohoClient) ExchangeCode(ctx context.Context, code string) (*zoho.TokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangedCodes = append(m.exchangedCodes, code)
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	if m.ExchangeResponse == nil {
		return nil, ierr.NewError("no exchange response configured").Mark(ierr.ErrHTTPClient)
	}
	cp := *m.ExchangeResponse
	return &cp, nil
}

func (m *MockZohoClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*zoho.TokenResponse, error) {
	m.mu.Lock()
	hook := m.OnRefresh
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshTokens = append(m.refreshTokens, refreshToken)
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	if m.RefreshResponse == nil {
		return nil, ierr.NewError("no refresh response configured").Mark(ierr.ErrHTTPClient)
	}
	cp := *m.RefreshResponse
	return &cp, nil
}

// InvoiceCalls returns the customer ids invoices were requested for, in order
func (m *MockZohoClient) InvoiceCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invoiceCalls...)
}

// PaymentWindows returns the payment date ranges requested, in order
func (m *MockZohoClient) PaymentWindows() []PaymentWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PaymentWindow(nil), m.paymentWindows...)
}

// RefreshTokens returns the refresh tokens presented, in order
func (m *MockZohoClient) RefreshTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.refreshTokens...)
}

// Reset forgets recorded calls
func (m *MockZohoClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoiceCalls = nil
	m.paymentWindows = nil
	m.refreshTokens = nil
	m.exchangedCodes = nil
}
