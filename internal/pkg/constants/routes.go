package constants

// Static route constants
const (
	// WebhookReadyRoute receives both verification handshakes and triggered events
	WebhookReadyRoute = "/webhooks/ready"
	LoginRoute        = "/freshbooks/login"
	AuthCallbackRoute = "/freshbooks/auth"
	PublicRoute       = "/"
)
