package freshbooks

// EventType names one FreshBooks webhook event in "object.action" form.
type EventType string

const (
	EventInvoiceCreate EventType = "invoice.create"
	EventPaymentCreate EventType = "payment.create"
	EventClientCreate  EventType = "client.create"
)

// supportedEventTypes lists every event the bot registers for and handles.
// FreshBooks emits far more event types than these; anything else arriving on
// the receiver is reported as unimplemented, not an error.
var supportedEventTypes = []EventType{
	EventInvoiceCreate,
	EventPaymentCreate,
	EventClientCreate,
}

// SupportedEventTypes returns the registration fan-out set.
func SupportedEventTypes() []EventType {
	out := make([]EventType, len(supportedEventTypes))
	copy(out, supportedEventTypes)
	return out
}

// ParseEventType maps a payload name onto the closed enum. The second return
// is false for every event type the bot does not implement.
func ParseEventType(name string) (EventType, bool) {
	for _, t := range supportedEventTypes {
		if string(t) == name {
			return t, true
		}
	}
	return EventType(name), false
}
