package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/auth"
	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/pkg/ranking"
	"entregas/service"
	"entregas/storage/memory"
)

const driverChat = int64(777001)

type fixture struct {
	bot    *Bot
	svc    service.IServiceManager
	driver *models.Profile
	client *models.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()
	svc := service.New(memory.New(memory.WithDefaultTariffs()), log, service.Options{
		Tokens: auth.NewTokenManager("test-secret", time.Hour),
	})

	signUp := func(email, role, doc string) *models.Profile {
		sess, err := svc.Auth().SignUp(ctx, service.SignUpInput{
			Email: email, Password: "segredo123", FullName: "Maria " + role, Role: role,
			Document: doc, Phone: "11987654321", CEP: "01310100",
		})
		require.NoError(t, err)
		return sess.Profile
	}

	f := &fixture{
		bot:    &Bot{svc: svc, log: log},
		svc:    svc,
		driver: signUp("moto@example.com", models.RoleDriver, "111.444.777-35"),
		client: signUp("cliente@example.com", models.RoleClient, "529.982.247-25"),
	}
	return f
}

func (f *fixture) link(t *testing.T, p *models.Profile, chatID int64) {
	t.Helper()
	code, err := f.svc.Profile().TelegramLinkCode(context.Background(), p.ID)
	require.NoError(t, err)
	text := f.bot.startText(context.Background(), chatID, code)
	require.Contains(t, text, p.FullName)
}

func TestStartLinksChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, msg("welcome"), f.bot.startText(ctx, driverChat, ""))
	assert.Equal(t, msg("bad_code"), f.bot.startText(ctx, driverChat, "nao-existe"))

	f.link(t, f.driver, driverChat)
	assert.Equal(t, msg("help"), f.bot.startText(ctx, driverChat, ""))

	p, err := f.svc.Profile().GetByTelegramChat(ctx, driverChat)
	require.NoError(t, err)
	assert.Equal(t, f.driver.ID, p.ID)
}

func TestStartMovesChatToAnotherProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.link(t, f.client, driverChat)
	f.link(t, f.driver, driverChat)

	p, err := f.svc.Profile().GetByTelegramChat(ctx, driverChat)
	require.NoError(t, err)
	assert.Equal(t, f.driver.ID, p.ID)
	assert.Contains(t, f.bot.balanceText(ctx, driverChat), "Disponível")
}

func TestDriverCommandsRequireLinkedDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, msg("not_linked"), f.bot.balanceText(ctx, 1))

	f.link(t, f.client, 2)
	assert.Equal(t, msg("drivers_only"), f.bot.rankText(ctx, 2))

	f.link(t, f.driver, driverChat)
	require.NoError(t, f.svc.Profile().Block(ctx, f.driver.ID))
	_, text := f.bot.activeCards(ctx, driverChat)
	assert.Equal(t, msg("blocked"), text)
}

func TestBalanceAndRank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.link(t, f.driver, driverChat)

	text := f.bot.balanceText(ctx, driverChat)
	assert.Contains(t, text, "Disponível: R$ 0,00")

	text = f.bot.rankText(ctx, driverChat)
	assert.Contains(t, text, "Nível: bronze")
	assert.Contains(t, text, "Próximo nível: prata")
	assert.Contains(t, text, "Faltam 50 entregas")
}

func TestStandingTextTopTier(t *testing.T) {
	text := standingText(ranking.Compute(600, 4.9))
	assert.Contains(t, text, "Nível: diamante")
	assert.Contains(t, text, msg("rank_top"))
}

func TestTripThroughBot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Profile().Approve(ctx, f.driver.ID))
	f.link(t, f.driver, driverChat)

	_, text := f.bot.activeCards(ctx, driverChat)
	assert.Equal(t, msg("no_active"), text)

	order, err := f.svc.Order().Create(ctx, f.client, service.CreateOrderInput{
		TariffID: 1, PickupAddress: "Av. Paulista, 1000", PickupCEP: "01310100",
		DropoffAddress: "Rua Augusta, 500", DropoffCEP: "01305000", DistanceKm: 2,
	})
	require.NoError(t, err)

	driver, err := f.svc.Profile().Get(ctx, f.driver.ID)
	require.NoError(t, err)
	d, err := f.svc.Delivery().Accept(ctx, driver, order.ID)
	require.NoError(t, err)

	cards, _ := f.bot.activeCards(ctx, driverChat)
	require.Len(t, cards, 1)
	assert.Contains(t, cards[0].text, "aguardando coleta")
	require.Len(t, cards[0].markup.InlineKeyboard, 1)
	assert.Equal(t, btnPickUp.Unique, cards[0].markup.InlineKeyboard[0][0].Unique)

	text, done := f.bot.advance(ctx, driverChat, actionComplete, d.ID)
	assert.False(t, done)
	assert.Equal(t, msg("conflict"), text)

	_, done = f.bot.advance(ctx, driverChat, actionPickUp, d.ID)
	require.True(t, done)

	cards, _ = f.bot.activeCards(ctx, driverChat)
	require.Len(t, cards, 1)
	assert.Equal(t, btnComplete.Unique, cards[0].markup.InlineKeyboard[0][0].Unique)

	text, done = f.bot.advance(ctx, driverChat, actionComplete, d.ID)
	require.True(t, done)
	assert.Contains(t, text, "R$ 8,80")

	_, text = f.bot.activeCards(ctx, driverChat)
	assert.Equal(t, msg("no_active"), text)
	assert.Contains(t, f.bot.balanceText(ctx, driverChat), "Disponível: R$ 8,80")
}
