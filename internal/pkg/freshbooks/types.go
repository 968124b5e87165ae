package freshbooks

import (
	"time"

	"github.com/thumbworks/freshbot/app/models"
)

// WebhookTriggeredContent is the inbound webhook payload. FreshBooks posts the
// same shape for a verification handshake and for a triggered event; a present
// verifier is the discriminator. Decode it once at the boundary and check
// IsVerification before touching anything else.
type WebhookTriggeredContent struct {
	FreshbooksUserID int    `json:"user_id" form:"user_id" query:"user_id"`
	Name             string `json:"name" form:"name" query:"name" validate:"required_without=Verifier"`
	ObjectID         int    `json:"object_id" form:"object_id" query:"object_id" validate:"required"`
	Verified         *bool  `json:"verified,omitempty" form:"verified" query:"verified"`
	Verifier         string `json:"verifier,omitempty" form:"verifier" query:"verifier"`
	AccountID        string `json:"account_id" form:"account_id" query:"account_id" validate:"required"`
}

// IsVerification reports whether this payload is the provider's verification
// handshake rather than a triggered event.
func (c WebhookTriggeredContent) IsVerification() bool {
	return c.Verifier != ""
}

// Amount is a monetary value as FreshBooks represents it: decimal string plus
// ISO currency code.
type Amount struct {
	Amount string `json:"amount"`
	Code   string `json:"code"`
}

// InvoiceContent is one invoice as returned by the accounting API.
type InvoiceContent struct {
	FreshbooksID        int    `json:"id"`
	Status              int    `json:"status"`
	PaymentStatus       string `json:"payment_status"`
	CurrentOrganization string `json:"current_organization"`
	Amount              Amount `json:"amount"`
	CreatedAt           string `json:"created_at"`
}

// invoiceDateLayouts covers the formats FreshBooks uses for created_at.
var invoiceDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// Model converts the API representation into the local cache record.
func (c InvoiceContent) Model(userID *uint) models.Invoice {
	var date time.Time
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, c.CreatedAt); err == nil {
			date = t
			break
		}
	}
	return models.Invoice{
		FreshbooksID:        c.FreshbooksID,
		Status:              c.Status,
		UserID:              userID,
		PaymentStatus:       c.PaymentStatus,
		CurrentOrganization: c.CurrentOrganization,
		Amount:              c.Amount.Amount,
		AmountCode:          c.Amount.Code,
		InvoiceDate:         date,
	}
}

// InvoicesMetaData is one page of an invoice listing plus its paging metadata.
type InvoicesMetaData struct {
	Pages    int              `json:"pages"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	Invoices []InvoiceContent `json:"invoices"`
}

// PaymentContent is one payment as returned by the accounting API.
type PaymentContent struct {
	FreshbooksID       int    `json:"id"`
	AccountingSystemID string `json:"accounting_systemid"`
	Updated            string `json:"updated"`
	InvoiceID          int    `json:"invoiceid"`
	Amount             Amount `json:"amount"`
	ClientID           int    `json:"clientid"`
	VisState           int    `json:"vis_state"`
	LogID              int    `json:"logid"`
	Note               string `json:"note"`
}

// ClientContent is one client (customer) record.
type ClientContent struct {
	FreshbooksID int    `json:"id"`
	Organization string `json:"organization"`
}

// WebhookCallback is one registered callback subscription on the events API.
type WebhookCallback struct {
	CallbackID int    `json:"callbackid"`
	Verified   bool   `json:"verified"`
	URI        string `json:"uri"`
	Event      string `json:"event"`
}

// WebhookCallbacksResult is the paged callback listing.
type WebhookCallbacksResult struct {
	PerPage   int               `json:"per_page"`
	Pages     int               `json:"pages"`
	Page      int               `json:"page"`
	Callbacks []WebhookCallback `json:"callbacks"`
}

// NewCallback is the result of registering a callback subscription.
type NewCallback struct {
	CallbackID int `json:"callbackid"`
}

// TokenExchangeResponse is the OAuth token endpoint's reply.
type TokenExchangeResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

// BusinessPayload is a business as embedded in the /users/me profile.
type BusinessPayload struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	AccountID *string `json:"account_id"`
}

// MembershipPayload links the profile's user to one business with a role.
type MembershipPayload struct {
	ID       int64           `json:"id"`
	Role     string          `json:"role"`
	Business BusinessPayload `json:"business"`
}

// UserProfile is the identity portion of the /users/me response.
type UserProfile struct {
	ID                  int64               `json:"id"`
	FirstName           string              `json:"first_name"`
	LastName            string              `json:"last_name"`
	BusinessMemberships []MembershipPayload `json:"business_memberships"`
}

// Envelopes. Every accounting response nests the useful object two or three
// levels deep under response/result.

type invoicePayload struct {
	Response struct {
		Result struct {
			Invoice InvoiceContent `json:"invoice"`
		} `json:"result"`
	} `json:"response"`
}

type invoicesPayload struct {
	Response struct {
		Result InvoicesMetaData `json:"result"`
	} `json:"response"`
}

type paymentPayload struct {
	Response struct {
		Result struct {
			Payment PaymentContent `json:"payment"`
		} `json:"result"`
	} `json:"response"`
}

type clientPayload struct {
	Response struct {
		Result struct {
			Client ClientContent `json:"client"`
		} `json:"result"`
	} `json:"response"`
}

type webhookCallbacksPayload struct {
	Response struct {
		Result WebhookCallbacksResult `json:"result"`
	} `json:"response"`
}

type newCallbackPayload struct {
	Response struct {
		Result struct {
			Callback NewCallback `json:"callback"`
		} `json:"result"`
	} `json:"response"`
}

type userProfilePayload struct {
	Response UserProfile `json:"response"`
}

type errorPayload struct {
	Response struct {
		Errors []struct {
			Errno   int    `json:"errno"`
			Field   string `json:"field"`
			Message string `json:"message"`
			Object  string `json:"object"`
		} `json:"errors"`
	} `json:"response"`
}

// Request bodies.

type newWebhookCallbackRequest struct {
	Event string `json:"event"`
	URI   string `json:"uri"`
}

type createWebhookRequestPayload struct {
	Callback newWebhookCallbackRequest `json:"callback"`
}

type confirmCallback struct {
	CallbackID int    `json:"callbackid"`
	Verifier   string `json:"verifier"`
}

type confirmReadyPayload struct {
	Callback confirmCallback `json:"callback"`
}

type tokenExchangeRequest struct {
	GrantType    string `json:"grant_type"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	Code         string `json:"code"`
}
