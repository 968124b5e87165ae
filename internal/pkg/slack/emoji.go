package slack

// Emoji is a Slack emoji short code, colons included.
type Emoji string

const (
	EmojiUber    Emoji = ":uber:"
	EmojiApple   Emoji = ":apple:"
	EmojiWalmart Emoji = ":walmart:"
	EmojiLyft    Emoji = ":lyft:"
)

// organizationEmoji keys client organizations (as FreshBooks reports them) to
// the emoji their notifications are decorated with.
var organizationEmoji = map[string]Emoji{
	"Uber Technologies, Inc": EmojiUber,
	"Apple":                  EmojiApple,
	"Walmart":                EmojiWalmart,
	"Lyft":                   EmojiLyft,
}

// EmojiForOrganization looks up the emoji for an organization name. Unknown
// organizations get no emoji; that is never an error.
func EmojiForOrganization(org string) (Emoji, bool) {
	e, ok := organizationEmoji[org]
	return e, ok
}
