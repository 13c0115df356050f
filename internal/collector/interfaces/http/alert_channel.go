package http

import "context"

// AlertStreamChannel adapts the SSE broker to the notification channel
// boundary, so dashboard clients see alerts alongside webhook recipients.
type AlertStreamChannel struct {
	broker *SSEBroker
}

// NewAlertStreamChannel constructs a channel publishing alerts on broker.
func NewAlertStreamChannel(broker *SSEBroker) *AlertStreamChannel {
	return &AlertStreamChannel{broker: broker}
}

// Send implements notify.Channel.
func (c *AlertStreamChannel) Send(_ context.Context, content string) error {
	if c == nil || c.broker == nil {
		return nil
	}
	c.broker.BroadcastAlert(content)
	return nil
}
