package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/httpclient"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite
	server   *httptest.Server
	client   ZohoClient
	handler  http.HandlerFunc
	mu       sync.Mutex
	requests []*http.Request
	forms    []url.Values
	creds    Credentials
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.requests = nil
	s.forms = nil
	s.handler = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.requests = append(s.requests, r)
		s.forms = append(s.forms, r.PostForm)
		s.mu.Unlock()
		s.handler(w, r)
	}))

	cfg := config.GetDefaultConfig()
	cfg.Zoho.APIBase = s.server.URL + "/invoice/v3"
	cfg.Zoho.AccountsURL = s.server.URL
	cfg.Zoho.ClientID = "client-id"
	cfg.Zoho.ClientSecret = "client-secret"
	cfg.Zoho.RedirectURI = "http://localhost/callback"
	cfg.Zoho.PageSize = 2

	log := logger.NewNopLogger()
	s.client = NewClient(httpclient.NewClient(httpclient.ClientConfig{Timeout: 5 * time.Second}, log), cfg, log)
	s.creds = Credentials{AccessToken: "access", OrganizationID: "org-1"}
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *ClientSuite) TestListCustomersFollowsPages() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, http.StatusOK, map[string]any{
				"code":         0,
				"contacts":     []map[string]any{{"contact_id": "C1"}, {"contact_id": "C2"}},
				"page_context": map[string]any{"page": 1, "has_more_page": true},
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{
				"code":         0,
				"contacts":     []map[string]any{{"contact_id": "C3", "cf_course": "MBA"}},
				"page_context": map[string]any{"page": 2, "has_more_page": false},
			})
		}
	}

	contacts, err := s.client.ListCustomers(context.Background(), s.creds)
	s.Require().NoError(err)
	s.Len(contacts, 3)
	s.Equal("MBA", contacts[2].Course)

	s.Require().Len(s.requests, 2)
	first := s.requests[0]
	s.Equal("/invoice/v3/customers", first.URL.Path)
	s.Equal("Zoho-oauthtoken access", first.Header.Get("Authorization"))
	s.Equal("org-1", first.Header.Get(headerOrganizationID))
	s.Equal("2", first.URL.Query().Get("per_page"))
}

func (s *ClientSuite) TestListPaymentsSendsDateWindow() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"code":             0,
			"customerpayments": []map[string]any{{"payment_id": "P1", "amount": 400}},
		})
	}

	month, err := types.ParseMonth("2024-02")
	s.Require().NoError(err)

	payments, err := s.client.ListPayments(context.Background(), s.creds, month.Start(), month.LastDay())
	s.Require().NoError(err)
	s.Len(payments, 1)

	q := s.requests[0].URL.Query()
	s.Equal("2024-02-01", q.Get("date_start"))
	s.Equal("2024-02-29", q.Get("date_end"))
}

func (s *ClientSuite) TestListInvoicesScopesByCustomer() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"code":     0,
			"invoices": []map[string]any{{"invoice_id": "I1", "customer_id": "C1", "total": 1000}},
		})
	}

	invoices, err := s.client.ListInvoices(context.Background(), s.creds, "C1")
	s.Require().NoError(err)
	s.Require().Len(invoices, 1)
	s.Equal(1000.0, invoices[0].Total)
	s.Equal("C1", s.requests[0].URL.Query().Get("customer_id"))
}

func (s *ClientSuite) TestNonZeroCodeIsProviderError() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"code": 57, "message": "not authorized"})
	}

	_, err := s.client.ListCustomers(context.Background(), s.creds)
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
}

func (s *ClientSuite) TestHTTPFailureIsProviderError() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 14, "message": "invalid oauth token"})
	}

	_, err := s.client.ListInvoices(context.Background(), s.creds, "C1")
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
	s.Len(s.requests, 1, "provider errors are not retried")
}

func (s *ClientSuite) TestMissingTokenIsRejectedLocally() {
	_, err := s.client.ListCustomers(context.Background(), Credentials{})
	s.True(ierr.IsPermissionDenied(err))
	s.Empty(s.requests)
}

func (s *ClientSuite) TestExchangeCode() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expires_in":    3600,
		})
	}

	tr, err := s.client.ExchangeCode(context.Background(), "code-123")
	s.Require().NoError(err)
	s.Equal("new-access", tr.AccessToken)
	s.Equal("new-refresh", tr.RefreshToken)
	s.Equal(3600, tr.ExpiresIn)

	s.Equal(tokenPath, s.requests[0].URL.Path)
	form := s.forms[0]
	s.Equal("authorization_code", form.Get("grant_type"))
	s.Equal("code-123", form.Get("code"))
	s.Equal("client-id", form.Get("client_id"))
	s.Equal("http://localhost/callback", form.Get("redirect_uri"))
}

func (s *ClientSuite) TestOAuthErrorInBody() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"error": "invalid_code"})
	}

	_, err := s.client.RefreshAccessToken(context.Background(), "refresh")
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
	s.Equal("refresh_token", s.forms[0].Get("grant_type"))
}

func (s *ClientSuite) TestAuthURL() {
	u, err := url.Parse(s.client.AuthURL("xyz"))
	s.Require().NoError(err)
	s.Equal(authPath, u.Path)
	s.Equal("client-id", u.Query().Get("client_id"))
	s.Equal("offline", u.Query().Get("access_type"))
	s.Equal("xyz", u.Query().Get("state"))
}
