package sender

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/remedikit/pushqueue/internal/model"
)

// ConsoleSender prints notifications instead of delivering them. Used in
// local environments where no push gateway is reachable.
type ConsoleSender struct{}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (s *ConsoleSender) Send(ctx context.Context, payload model.Payload) (string, error) {
	if err := payload.Validate(); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	switch payload.Channel {
	case model.ChannelPush:
		fmt.Printf(
			"Sending push to %d device(s): %s: %s\n",
			len(payload.Push.DeviceTokens),
			payload.Push.Title,
			payload.Push.Body,
		)
	case model.ChannelEmail:
		fmt.Printf(
			"Sending email to %s: %s\n",
			payload.Email.To,
			payload.Email.Subject,
		)
	case model.ChannelSMS:
		fmt.Printf(
			"Sending sms to %s: %s\n",
			payload.SMS.To,
			payload.SMS.Text,
		)
	}
	return uuid.New().String(), nil
}
