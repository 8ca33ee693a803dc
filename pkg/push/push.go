package push

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"firebase.google.com/go/v4/messaging"
)

const (
	KeyParcelvoy    = "parcelvoy"
	KeyCheckMessage = "in_app_check_message"
)

var ErrMissingToken = errors.New("push: device token is required")

// IsParcelvoyPush reports whether data came from Parcelvoy.
func IsParcelvoyPush(data map[string]string) bool {
	return flag(data, KeyParcelvoy)
}

// IsCheckMessagePush reports whether data is a Parcelvoy in-app check
// nudge.
func IsCheckMessagePush(data map[string]string) bool {
	return IsParcelvoyPush(data) && flag(data, KeyCheckMessage)
}

// IsParcelvoyMessage is IsParcelvoyPush for a firebase message.
func IsParcelvoyMessage(msg *messaging.Message) bool {
	return msg != nil && IsParcelvoyPush(msg.Data)
}

// IsCheckMessage is IsCheckMessagePush for a firebase message.
func IsCheckMessage(msg *messaging.Message) bool {
	return msg != nil && IsCheckMessagePush(msg.Data)
}

func flag(data map[string]string, key string) bool {
	v, ok := data[key]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// NewCheckMessage builds a silent data-only message that makes the app on
// token check for in-app notifications.
func NewCheckMessage(token string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Data: map[string]string{
			KeyParcelvoy:    "true",
			KeyCheckMessage: "true",
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-push-type": "background", "apns-priority": "5"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{ContentAvailable: true}},
		},
	}
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// SendCheckMessage sends NewCheckMessage(token) and returns the message id.
func SendCheckMessage(ctx context.Context, sender Sender, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	id, err := sender.Send(ctx, NewCheckMessage(token))
	if err != nil {
		return "", fmt.Errorf("push: send check message: %w", err)
	}
	return id, nil
}
