package bot

import (
	"context"
	"fmt"
	"strconv"

	"entregas/pkg/models"
	"entregas/pkg/money"
	"entregas/pkg/ranking"
	"entregas/service"

	tele "gopkg.in/telebot.v3"
)

var statusNames = map[string]string{
	models.OrderAccepted:  "aguardando coleta",
	models.OrderPickedUp:  "em rota",
	models.OrderDelivered: "entregue",
}

type card struct {
	text   string
	markup *tele.ReplyMarkup
}

func (b *Bot) driverFor(ctx context.Context, chatID int64) (*models.Profile, error) {
	p, err := b.svc.Profile().GetByTelegramChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !p.IsDriver() {
		return nil, service.ErrForbidden
	}
	if p.Blocked {
		return nil, service.ErrBlocked
	}
	return p, nil
}

func (b *Bot) handleBalance(c tele.Context) error {
	return c.Send(b.balanceText(context.Background(), c.Chat().ID), tele.ModeHTML)
}

func (b *Bot) handleRank(c tele.Context) error {
	return c.Send(b.rankText(context.Background(), c.Chat().ID), tele.ModeHTML)
}

func (b *Bot) handleActive(c tele.Context) error {
	cards, text := b.activeCards(context.Background(), c.Chat().ID)
	if len(cards) == 0 {
		return c.Send(text)
	}
	for _, cd := range cards {
		if err := c.Send(cd.text, cd.markup, tele.ModeHTML); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) balanceText(ctx context.Context, chatID int64) string {
	p, err := b.driverFor(ctx, chatID)
	if err != nil {
		return errText(err)
	}
	bal, err := b.svc.Withdrawal().Balance(ctx, p.ID)
	if err != nil {
		return errText(err)
	}
	return fmt.Sprintf(msg("balance"),
		money.FormatBRL(bal.Available), money.FormatBRL(bal.Earned),
		money.FormatBRL(bal.Withdrawn), money.FormatBRL(bal.Pending))
}

func (b *Bot) rankText(ctx context.Context, chatID int64) string {
	p, err := b.driverFor(ctx, chatID)
	if err != nil {
		return errText(err)
	}
	st, err := b.svc.Profile().Standing(ctx, p.ID)
	if err != nil {
		return errText(err)
	}
	return standingText(st)
}

func standingText(st ranking.Standing) string {
	txt := fmt.Sprintf(msg("rank"), st.Tier, st.Completed, st.AvgRating)
	if st.Next == nil {
		return txt + msg("rank_top")
	}
	return txt + fmt.Sprintf(msg("rank_next"), st.Next.Tier, st.DeliveriesToNext, st.Next.MinRating, st.Progress*100)
}

// activeCards returns one card per open delivery, or a single message when
// there is nothing to show.
func (b *Bot) activeCards(ctx context.Context, chatID int64) ([]card, string) {
	p, err := b.driverFor(ctx, chatID)
	if err != nil {
		return nil, errText(err)
	}
	list, err := b.svc.Delivery().Active(ctx, p.ID)
	if err != nil {
		return nil, errText(err)
	}
	if len(list) == 0 {
		return nil, msg("no_active")
	}

	cards := make([]card, 0, len(list))
	for _, d := range list {
		cards = append(cards, deliveryCard(d))
	}
	return cards, ""
}

func deliveryCard(d *models.Delivery) card {
	status, ok := statusNames[d.Status]
	if !ok {
		status = d.Status
	}
	cd := card{
		text:   fmt.Sprintf(msg("card"), d.OrderID, status, money.FormatBRL(d.DriverEarning)),
		markup: &tele.ReplyMarkup{},
	}

	id := strconv.FormatInt(d.ID, 10)
	switch d.Status {
	case models.OrderAccepted:
		cd.markup.Inline(cd.markup.Row(cd.markup.Data(msg("btn_pickup"), btnPickUp.Unique, id)))
	case models.OrderPickedUp:
		cd.markup.Inline(cd.markup.Row(cd.markup.Data(msg("btn_complete"), btnComplete.Unique, id)))
	}
	return cd
}
