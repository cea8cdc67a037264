package model

import "fmt"

type Channel string

const (
	// ChannelPush delivers to mobile device tokens through the push gateway.
	ChannelPush Channel = "push"
	// ChannelEmail delivers to an email address.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers to a phone number.
	ChannelSMS Channel = "sms"
)

// Payload is a tagged union of per-channel notification parameters.
// Exactly one variant matching Channel must be set. The queue core treats
// it as opaque; senders call Validate before dispatching.
type Payload struct {
	Channel Channel       `json:"channel"`
	Push    *PushMessage  `json:"push,omitempty"`
	Email   *EmailMessage `json:"email,omitempty"`
	SMS     *SMSMessage   `json:"sms,omitempty"`
}

type PushMessage struct {
	DeviceTokens []string          `json:"device_tokens"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
}

type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type SMSMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Validate checks that the variant matching the channel tag is present and
// carries a destination. It belongs to the sender adapters; an invalid
// payload surfaces as a failed delivery attempt, never as an enqueue error.
func (p Payload) Validate() error {
	switch p.Channel {
	case ChannelPush:
		if p.Push == nil {
			return fmt.Errorf("payload channel '%s' has no push message", p.Channel)
		}
		if len(p.Push.DeviceTokens) == 0 {
			return fmt.Errorf("push message has no device tokens")
		}
	case ChannelEmail:
		if p.Email == nil {
			return fmt.Errorf("payload channel '%s' has no email message", p.Channel)
		}
		if p.Email.To == "" {
			return fmt.Errorf("email message has no recipient")
		}
	case ChannelSMS:
		if p.SMS == nil {
			return fmt.Errorf("payload channel '%s' has no sms message", p.Channel)
		}
		if p.SMS.To == "" {
			return fmt.Errorf("sms message has no recipient")
		}
	default:
		return fmt.Errorf("invalid payload channel '%s': possible ones are: '%s', '%s', '%s'",
			p.Channel, ChannelPush, ChannelEmail, ChannelSMS)
	}
	return nil
}
