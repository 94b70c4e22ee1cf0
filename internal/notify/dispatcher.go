// Package notify delivers outbound messages. It performs no retries:
// failures are logged and reported to the caller, and a broadcast keeps
// going past individual failed recipients.
package notify

import (
	"log/slog"
)

// Gateway is the outbound side of the messaging service.
type Gateway interface {
	SendText(chatID int64, text string) error
}

type Dispatcher struct {
	gw Gateway
}

func NewDispatcher(gw Gateway) *Dispatcher {
	return &Dispatcher{gw: gw}
}

// Send delivers one message. The failure is logged here; the error is also
// returned for callers that need to surface it.
func (d *Dispatcher) Send(chatID int64, text string) error {
	if err := d.gw.SendText(chatID, text); err != nil {
		slog.Error("send failed", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

// Broadcast delivers text to every recipient independently and returns how
// many deliveries succeeded. One failed recipient never blocks the rest.
func (d *Dispatcher) Broadcast(chatIDs []int64, text string) int {
	delivered := 0
	for _, id := range chatIDs {
		if err := d.gw.SendText(id, text); err != nil {
			slog.Error("broadcast delivery failed", "chat_id", id, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}
