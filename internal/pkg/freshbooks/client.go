package freshbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thumbworks/freshbot/internal/pkg/env"
)

const (
	defaultAPIBaseURL    = "https://api.freshbooks.com"
	defaultAuthorizeURL  = "https://auth.freshbooks.com/service/auth/oauth/authorize"
	apiVersionHeaderName = "Api-Version"
	apiVersion           = "alpha"

	// FreshBooks structured error code for a resource that does not exist.
	// Documented at https://www.freshbooks.com/api/errors
	errnoUnknownResource = 1012
)

// ErrInvoiceNotFound is returned when FreshBooks reports errno 1012 (unknown
// resource) for a fetched object.
var ErrInvoiceNotFound = errors.New("freshbooks: invoice not found")

// APIError is a non-2xx reply from FreshBooks, carrying the provider's own
// error code when one was present in the body.
type APIError struct {
	StatusCode int
	Errno      int
	Message    string
}

func (e *APIError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("freshbooks: status=%d errno=%d %s", e.StatusCode, e.Errno, e.Message)
	}
	return fmt.Sprintf("freshbooks: status=%d %s", e.StatusCode, e.Message)
}

// Client is a typed HTTP client for the FreshBooks API. Every authenticated
// call carries Accept: application/json, the Api-Version header, and the
// caller's bearer token.
type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	APIBaseURL   string
	AuthorizeURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from FRESHBOOKS_* environment variables.
func NewClientFromEnv() *Client {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	redirectURI := strings.TrimSpace(env.GetEnv("FRESHBOOKS_REDIRECT_URI", ""))
	if redirectURI == "" && base != "" {
		redirectURI = base + "/freshbooks/auth"
	}

	return &Client{
		ClientID:     strings.TrimSpace(env.GetEnv("FRESHBOOKS_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("FRESHBOOKS_CLIENT_SECRET", "")),
		RedirectURI:  redirectURI,
		APIBaseURL:   strings.TrimSpace(env.GetEnv("FRESHBOOKS_API_BASE_URL", defaultAPIBaseURL)),
		AuthorizeURL: strings.TrimSpace(env.GetEnv("FRESHBOOKS_AUTHORIZE_URL", defaultAuthorizeURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AuthorizeURLWithState returns the provider URL to start the OAuth flow.
func (c *Client) AuthorizeURLWithState(state string) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return "", errors.New("FRESHBOOKS_CLIENT_ID is not configured")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return "", errors.New("FRESHBOOKS_REDIRECT_URI is not configured")
	}
	u, err := url.Parse(c.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid FRESHBOOKS_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode trades an authorization code for a token set.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenExchangeResponse, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, errors.New("FRESHBOOKS_CLIENT_ID/FRESHBOOKS_CLIENT_SECRET are not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	payload := tokenExchangeRequest{
		GrantType:    "authorization_code",
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
		ClientID:     c.ClientID,
		Code:         strings.TrimSpace(code),
	}

	var out TokenExchangeResponse
	if err := c.do(ctx, http.MethodPost, c.APIBaseURL+"/auth/oauth/token", "", payload, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("freshbooks token exchange returned empty access_token")
	}
	return &out, nil
}

// FetchCurrentUser loads the authenticated identity with its business
// memberships.
func (c *Client) FetchCurrentUser(ctx context.Context, accessToken string) (*UserProfile, error) {
	var out userProfilePayload
	err := c.do(ctx, http.MethodGet, c.APIBaseURL+"/auth/api/v1/users/me", accessToken, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out.Response, nil
}

// FetchInvoice loads a single invoice.
func (c *Client) FetchInvoice(ctx context.Context, accountID string, invoiceID int, accessToken string) (*InvoiceContent, error) {
	u := fmt.Sprintf("%s/accounting/account/%s/invoices/invoices/%d", c.APIBaseURL, url.PathEscape(accountID), invoiceID)
	var out invoicePayload
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out.Response.Result.Invoice, nil
}

// FetchInvoices loads one page of the invoice listing.
func (c *Client) FetchInvoices(ctx context.Context, accountID, accessToken string, page int) (*InvoicesMetaData, error) {
	u := fmt.Sprintf("%s/accounting/account/%s/invoices/invoices?page=%d", c.APIBaseURL, url.PathEscape(accountID), page)
	var out invoicesPayload
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out.Response.Result, nil
}

// FetchPayment loads a single payment.
func (c *Client) FetchPayment(ctx context.Context, accountID string, paymentID int, accessToken string) (*PaymentContent, error) {
	u := fmt.Sprintf("%s/accounting/account/%s/payments/payments/%d", c.APIBaseURL, url.PathEscape(accountID), paymentID)
	var out paymentPayload
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out.Response.Result.Payment, nil
}

// FetchClient loads a single client record.
func (c *Client) FetchClient(ctx context.Context, accountID string, clientID int, accessToken string) (*ClientContent, error) {
	u := fmt.Sprintf("%s/accounting/account/%s/users/clients/%d", c.APIBaseURL, url.PathEscape(accountID), clientID)
	var out clientPayload
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out.Response.Result.Client, nil
}

// FetchWebhooks lists the account's registered callback subscriptions.
func (c *Client) FetchWebhooks(ctx context.Context, accountID, accessToken string) (*WebhookCallbacksResult, error) {
	u := fmt.Sprintf("%s/events/account/%s/events/callbacks", c.APIBaseURL, url.PathEscape(accountID))
	var out webhookCallbacksPayload
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out.Response.Result, nil
}

// CreateWebhook registers a callback subscription for one event type pointing
// at callbackURI.
func (c *Client) CreateWebhook(ctx context.Context, accountID, accessToken string, event EventType, callbackURI string) (*NewCallback, error) {
	u := fmt.Sprintf("%s/events/account/%s/events/callbacks", c.APIBaseURL, url.PathEscape(accountID))
	payload := createWebhookRequestPayload{
		Callback: newWebhookCallbackRequest{
			Event: string(event),
			URI:   callbackURI,
		},
	}
	var out newCallbackPayload
	if err := c.do(ctx, http.MethodPost, u, accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out.Response.Result.Callback, nil
}

// DeleteWebhook removes a callback subscription.
func (c *Client) DeleteWebhook(ctx context.Context, accountID, accessToken string, webhookID int) error {
	u := fmt.Sprintf("%s/events/account/%s/events/callbacks/%d", c.APIBaseURL, url.PathEscape(accountID), webhookID)
	return c.do(ctx, http.MethodDelete, u, accessToken, nil, nil)
}

// ConfirmWebhook answers the provider's verification handshake with the
// verifier it sent us.
func (c *Client) ConfirmWebhook(ctx context.Context, accessToken, accountID string, objectID int, verifier string) error {
	if verifier == "" {
		return errors.New("freshbooks: verifier is required to confirm a webhook")
	}
	u := fmt.Sprintf("%s/events/account/%s/events/callbacks/%d", c.APIBaseURL, url.PathEscape(accountID), objectID)
	payload := confirmReadyPayload{
		Callback: confirmCallback{
			CallbackID: objectID,
			Verifier:   verifier,
		},
	}
	return c.do(ctx, http.MethodPut, u, accessToken, payload, nil)
}

// do performs one API call. A non-2xx reply is decoded as the provider's error
// envelope; errno 1012 is translated to ErrInvoiceNotFound for caller clarity,
// everything else surfaces as *APIError.
func (c *Client) do(ctx context.Context, method, rawURL, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiVersionHeaderName, apiVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("freshbooks: decoding %s %s: %w", method, rawURL, err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var ep errorPayload
	if err := json.Unmarshal(raw, &ep); err == nil && len(ep.Response.Errors) > 0 {
		first := ep.Response.Errors[0]
		if first.Errno == errnoUnknownResource {
			return ErrInvoiceNotFound
		}
		return &APIError{StatusCode: status, Errno: first.Errno, Message: first.Message}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
}
