package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entregas/config"
	"entregas/pkg/logger"
	"entregas/service"

	tele "gopkg.in/telebot.v3"
)

const lang = "pt"

// Bot is the Telegram side channel: it pushes notifications to linked chats
// and answers a handful of driver commands.
type Bot struct {
	api *tele.Bot
	svc service.IServiceManager
	log logger.ILogger
}

var (
	btnPickUp   = tele.Btn{Unique: "pickup"}
	btnComplete = tele.Btn{Unique: "complete"}
)

func New(cfg config.Config, svc service.IServiceManager, log logger.ILogger) (*Bot, error) {
	b := &Bot{svc: svc, log: log}

	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			fields := []logger.Field{logger.Error(err)}
			if c != nil && c.Chat() != nil {
				fields = append(fields, logger.Int64("chat_id", c.Chat().ID))
			}
			log.Error("telegram handler failed", fields...)
		},
	}
	api, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	b.api = api
	b.registerHandlers()
	return b, nil
}

// Start blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("🤖 telegram bot started", logger.String("username", b.api.Me.Username))
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

// Push sends a plain text message to a linked chat.
func (b *Bot) Push(_ context.Context, chatID int64, text string) error {
	_, err := b.api.Send(&tele.Chat{ID: chatID}, text)
	return err
}

var messages = map[string]map[string]string{
	"pt": {
		"welcome":      "👋 Olá! Para receber avisos das suas entregas, gere um código em Perfil > Telegram e envie /start <código>.",
		"linked":       "✅ Pronto, %s! Este chat agora recebe os avisos da sua conta.",
		"bad_code":     "❌ Código inválido ou já utilizado. Gere um novo no aplicativo.",
		"not_linked":   "🔗 Este chat ainda não está vinculado. Envie /start <código> primeiro.",
		"drivers_only": "🚫 Este comando é exclusivo para entregadores.",
		"not_approved": "⏳ Seu cadastro ainda está em análise.",
		"blocked":      "🚫 Sua conta está bloqueada.",
		"failed":       "⚠️ Não foi possível concluir agora. Tente novamente.",
		"help":         "📋 Comandos:\n/saldo - saldo disponível para saque\n/rank - seu nível e progresso\n/entregas - entregas em andamento",
		"balance":      "💰 <b>Saldo</b>\n\nDisponível: %s\nGanho total: %s\nSacado: %s\nSaques pendentes: %s",
		"rank":         "🏅 <b>Nível: %s</b>\nEntregas: %d\nNota média: %.2f",
		"rank_next":    "\n\nPróximo nível: %s\nFaltam %d entregas (nota mínima %.1f)\nProgresso: %.0f%%",
		"rank_top":     "\n\n💎 Você está no nível máximo!",
		"no_active":    "📭 Nenhuma entrega em andamento.",
		"card":         "📦 <b>Pedido #%d</b>\nStatus: %s\nGanho: %s",
		"btn_pickup":   "📥 Coletei o pacote",
		"btn_complete": "🏁 Entreguei",
		"picked":       "📦 Coleta registrada no pedido #%d.",
		"delivered":    "🏁 Pedido #%d entregue. Ganho: %s",
		"conflict":     "⚠️ O status desta entrega mudou. Envie /entregas para ver a lista atual.",
	},
}

func msg(key string) string {
	return messages[lang][key]
}

// errText turns a service error into something a driver can act on.
func errText(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return msg("not_linked")
	case errors.Is(err, service.ErrDriverNotApproved):
		return msg("not_approved")
	case errors.Is(err, service.ErrBlocked):
		return msg("blocked")
	case errors.Is(err, service.ErrForbidden):
		return msg("drivers_only")
	case errors.Is(err, service.ErrConflict):
		return msg("conflict")
	default:
		return msg("failed")
	}
}

func (b *Bot) registerHandlers() {
	b.api.Handle("/start", b.handleStart)
	b.api.Handle("/ajuda", b.handleHelp)
	b.api.Handle("/saldo", b.handleBalance)
	b.api.Handle("/rank", b.handleRank)
	b.api.Handle("/entregas", b.handleActive)
	b.api.Handle(&btnPickUp, b.handlePickUp)
	b.api.Handle(&btnComplete, b.handleComplete)
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(b.startText(context.Background(), c.Chat().ID, c.Message().Payload))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(msg("help"))
}

// startText links the chat when a code is given. Without a code it only
// greets, or shows help for chats that are already linked.
func (b *Bot) startText(ctx context.Context, chatID int64, code string) string {
	if code == "" {
		if _, err := b.svc.Profile().GetByTelegramChat(ctx, chatID); err == nil {
			return msg("help")
		}
		return msg("welcome")
	}

	p, err := b.svc.Profile().LinkTelegram(ctx, code, chatID)
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalidInput) {
		return msg("bad_code")
	}
	if err != nil {
		b.log.Error("failed to link telegram chat", logger.Int64("chat_id", chatID), logger.Error(err))
		return msg("failed")
	}
	b.log.Info("telegram chat linked", logger.Int64("profile_id", p.ID), logger.Int64("chat_id", chatID))
	return fmt.Sprintf(msg("linked"), p.FullName)
}
