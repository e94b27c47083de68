package bot

import (
	"context"
	"fmt"
	"strconv"

	"entregas/pkg/logger"
	"entregas/pkg/money"

	tele "gopkg.in/telebot.v3"
)

const (
	actionPickUp   = "pickup"
	actionComplete = "complete"
)

func (b *Bot) handlePickUp(c tele.Context) error {
	return b.handleTrip(c, actionPickUp)
}

func (b *Bot) handleComplete(c tele.Context) error {
	return b.handleTrip(c, actionComplete)
}

func (b *Bot) handleTrip(c tele.Context, action string) error {
	id, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: msg("failed"), ShowAlert: true})
	}

	text, done := b.advance(context.Background(), c.Chat().ID, action, id)
	if !done {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	_ = c.Respond()
	return c.Edit(text)
}

// advance moves a delivery one step forward on behalf of the chat's driver.
// Proof of delivery can only be attached from the app.
func (b *Bot) advance(ctx context.Context, chatID int64, action string, deliveryID int64) (string, bool) {
	p, err := b.driverFor(ctx, chatID)
	if err != nil {
		return errText(err), false
	}

	switch action {
	case actionPickUp:
		d, err := b.svc.Delivery().PickUp(ctx, p, deliveryID)
		if err != nil {
			return errText(err), false
		}
		return fmt.Sprintf(msg("picked"), d.OrderID), true
	case actionComplete:
		d, err := b.svc.Delivery().Complete(ctx, p, deliveryID, "")
		if err != nil {
			return errText(err), false
		}
		return fmt.Sprintf(msg("delivered"), d.OrderID, money.FormatBRL(d.DriverEarning)), true
	default:
		b.log.Warning("unknown trip action", logger.String("action", action))
		return msg("failed"), false
	}
}
