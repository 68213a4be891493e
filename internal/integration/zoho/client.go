package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/httpclient"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/types"
)

const (
	headerOrganizationID = "X-com-zoho-invoice-organizationid"
	tokenPath            = "/oauth/v2/token"
	authPath             = "/oauth/v2/auth"

	// maxPages stops a provider that keeps reporting more pages
	maxPages = 500
)

// ZohoClient defines the provider operations used by the sync and the passthrough routes
type ZohoClient interface {
	ListCustomers(ctx context.Context, creds Credentials) ([]Contact, error)
	ListInvoices(ctx context.Context, creds Credentials, customerID string) ([]Invoice, error)
	ListPayments(ctx context.Context, creds Credentials, dateStart, dateEnd time.Time) ([]CustomerPayment, error)

	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// Client talks to the Zoho Invoice v3 API
type Client struct {
	httpClient httpclient.Client
	config     config.ZohoConfig
	logger     *logger.Logger
}

func NewClient(httpClient httpclient.Client, cfg *config.Configuration, logger *logger.Logger) ZohoClient {
	zc := cfg.Zoho
	if zc.PageSize <= 0 {
		zc.PageSize = 200
	}
	return &Client{
		httpClient: httpClient,
		config:     zc,
		logger:     logger,
	}
}

func (c *Client) ListCustomers(ctx context.Context, creds Credentials) ([]Contact, error) {
	return fetchAll[Contact](ctx, c, creds, "/customers", url.Values{}, "contacts")
}

func (c *Client) ListInvoices(ctx context.Context, creds Credentials, customerID string) ([]Invoice, error) {
	query := url.Values{}
	query.Set("customer_id", customerID)
	return fetchAll[Invoice](ctx, c, creds, "/invoices", query, "invoices")
}

// ListPayments lists payments dated within [dateStart, dateEnd], both inclusive
func (c *Client) ListPayments(ctx context.Context, creds Credentials, dateStart, dateEnd time.Time) ([]CustomerPayment, error) {
	query := url.Values{}
	query.Set("date_start", dateStart.Format(types.DateLayout))
	query.Set("date_end", dateEnd.Format(types.DateLayout))
	return fetchAll[CustomerPayment](ctx, c, creds, "/customerpayments", query, "customerpayments")
}

// fetchAll follows page_context until the provider reports no more pages
func fetchAll[T any](ctx context.Context, c *Client, creds Credentials, path string, query url.Values, key string) ([]T, error) {
	if creds.AccessToken == "" {
		return nil, ierr.NewError("missing zoho access token").
			WithHint("Zoho is not authorized yet. Connect Zoho from the admin dashboard first.").
			Mark(ierr.ErrPermissionDenied)
	}

	items := make([]T, 0)
	for page := 1; page <= maxPages; page++ {
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(c.config.PageSize))

		body, err := c.get(ctx, creds, path, query)
		if err != nil {
			return nil, err
		}

		envelope := make(map[string]json.RawMessage)
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to parse Zoho response").
				Mark(ierr.ErrHTTPClient)
		}
		if err := checkCode(envelope); err != nil {
			return nil, err
		}

		var batch []T
		if raw, ok := envelope[key]; ok {
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, ierr.WithError(err).
					WithHintf("Failed to parse Zoho %s", key).
					Mark(ierr.ErrHTTPClient)
			}
		}
		items = append(items, batch...)

		var pc PageContext
		if raw, ok := envelope["page_context"]; ok {
			_ = json.Unmarshal(raw, &pc)
		}

		c.logger.Debugw("fetched zoho page",
			"path", path,
			"page", page,
			"count", len(batch),
			"has_more_page", pc.HasMorePage,
		)

		if !pc.HasMorePage || len(batch) == 0 {
			return items, nil
		}
	}

	return nil, ierr.NewErrorf("zoho %s did not finish after %d pages", path, maxPages).
		WithHint("Zoho kept reporting more pages").
		Mark(ierr.ErrHTTPClient)
}

func (c *Client) get(ctx context.Context, creds Credentials, path string, query url.Values) ([]byte, error) {
	orgID := creds.OrganizationID
	if orgID == "" {
		orgID = c.config.OrganizationID
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    strings.TrimSuffix(c.config.APIBase, "/") + path + "?" + query.Encode(),
		Headers: map[string]string{
			"Authorization":      "Zoho-oauthtoken " + creds.AccessToken,
			headerOrganizationID: orgID,
			"Accept":             "application/json",
		},
	})
	if err != nil {
		return nil, providerError(err, path)
	}
	return resp.Body, nil
}

// checkCode treats a non-zero code in the body as a provider error
func checkCode(envelope map[string]json.RawMessage) error {
	raw, ok := envelope["code"]
	if !ok {
		return nil
	}
	var code int
	if err := json.Unmarshal(raw, &code); err != nil || code == 0 {
		return nil
	}
	var message string
	_ = json.Unmarshal(envelope["message"], &message)

	return ierr.NewErrorf("zoho returned code %d", code).
		WithHintf("Zoho error: %s", message).
		WithReportableDetails(map[string]any{
			"code":    code,
			"message": message,
		}).
		Mark(ierr.ErrHTTPClient)
}

// providerError attaches the provider's response body to transport errors
func providerError(err error, path string) error {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		details := map[string]any{
			"status_code": httpErr.StatusCode,
			"path":        path,
		}
		var body map[string]any
		if json.Unmarshal(httpErr.Response, &body) == nil {
			details["provider_response"] = body
		} else {
			details["provider_response"] = string(httpErr.Response)
		}
		return ierr.WithError(err).
			WithHintf("Zoho request failed with status %d", httpErr.StatusCode).
			WithReportableDetails(details).
			Mark(ierr.ErrHTTPClient)
	}
	return ierr.WithError(err).
		WithHint("Could not reach Zoho").
		WithReportableDetails(map[string]any{"path": path}).
		Mark(ierr.ErrHTTPClient)
}

// AuthURL is the consent page an admin is sent to
func (c *Client) AuthURL(state string) string {
	query := url.Values{}
	query.Set("scope", c.config.Scope)
	query.Set("client_id", c.config.ClientID)
	query.Set("response_type", "code")
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	query.Set("redirect_uri", c.config.RedirectURI)
	if state != "" {
		query.Set("state", state)
	}
	return strings.TrimSuffix(c.config.AccountsURL, "/") + authPath + "?" + query.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	if code == "" {
		return nil, ierr.NewError("authorization code is required").
			WithHint("Missing authorization code").
			Mark(ierr.ErrValidation)
	}

	c.logger.Debugw("exchanging zoho authorization code")

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)
	return c.token(ctx, form)
}

func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, ierr.NewError("refresh token is required").
			WithHint("No refresh token stored. Re-authorize Zoho.").
			Mark(ierr.ErrValidation)
	}

	c.logger.Debugw("refreshing zoho access token")

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.token(ctx, form)
}

func (c *Client) token(ctx context.Context, form url.Values) (*TokenResponse, error) {
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    strings.TrimSuffix(c.config.AccountsURL, "/") + tokenPath,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Accept":       "application/json",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return nil, providerError(err, tokenPath)
	}

	var tr TokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse Zoho OAuth token response").
			Mark(ierr.ErrHTTPClient)
	}

	// the accounts server reports grant errors with a 200
	if tr.Error != "" {
		hint := fmt.Sprintf("Zoho OAuth error: %s", tr.Error)
		if tr.Error == "invalid_code" || tr.Error == "invalid_grant" {
			hint = "The authorization code or refresh token is invalid or expired. Please re-authorize Zoho."
		}
		return nil, ierr.NewErrorf("zoho oauth error: %s", tr.Error).
			WithHint(hint).
			WithReportableDetails(map[string]any{
				"error":      tr.Error,
				"grant_type": form.Get("grant_type"),
			}).
			Mark(ierr.ErrHTTPClient)
	}
	if tr.AccessToken == "" {
		return nil, ierr.NewError("zoho oauth response has no access token").
			WithHint("Zoho did not return an access token").
			Mark(ierr.ErrHTTPClient)
	}

	return &tr, nil
}
