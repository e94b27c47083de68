package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"entregas/pkg/auth"
	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/pkg/realtime"
	"entregas/storage/memory"
)

const (
	cpfClient = "529.982.247-25"
	cpfDriver = "111.444.777-35"
	cnpjShop  = "11.222.333/0001-81"
	password  = "segredo123"
)

type recordingBus struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (b *recordingBus) Publish(_ context.Context, ev realtime.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, _ realtime.Handler) error {
	<-ctx.Done()
	return nil
}

func (b *recordingBus) count(profileID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ev := range b.events {
		if ev.ProfileID == profileID {
			n++
		}
	}
	return n
}

type pushed struct {
	chatID int64
	text   string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
}

func (p *fakePusher) Push(_ context.Context, chatID int64, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, pushed{chatID: chatID, text: text})
	return nil
}

type fixture struct {
	svc    IServiceManager
	db     *memory.Store
	bus    *recordingBus
	pusher *fakePusher
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bus:    &recordingBus{},
		pusher: &fakePusher{},
		now:    time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC),
	}
	f.db = memory.New(memory.WithClock(func() time.Time { return f.now }))
	f.svc = New(f.db, logger.NewNop(), Options{
		Tokens:        auth.NewTokenManager("test-secret", time.Hour),
		Bus:           f.bus,
		AdminEmails:   []string{"Admin@Entregas.com.br"},
		MinWithdrawal: 2000,
		Now:           func() time.Time { return f.now },
	})
	f.svc.Notification().AttachPusher(f.pusher)
	return f
}

func (f *fixture) signUp(t *testing.T, in SignUpInput) *models.Profile {
	t.Helper()
	if in.Password == "" {
		in.Password = password
	}
	if in.FullName == "" {
		in.FullName = "Fulano de Tal"
	}
	if in.Phone == "" {
		in.Phone = "11987654321"
	}
	if in.CEP == "" {
		in.CEP = "01310100"
	}
	sess, err := f.svc.Auth().SignUp(context.Background(), in)
	require.NoError(t, err)
	return sess.Profile
}

func (f *fixture) admin(t *testing.T) *models.Profile {
	return f.signUp(t, SignUpInput{Email: "admin@entregas.com.br", FullName: "Admin"})
}

func (f *fixture) client(t *testing.T) *models.Profile {
	return f.signUp(t, SignUpInput{Email: "cliente@example.com", Role: models.RoleClient, Document: cpfClient})
}

// approvedDriver signs up a driver and approves it.
func (f *fixture) approvedDriver(t *testing.T, email, cpf string) *models.Profile {
	t.Helper()
	d := f.signUp(t, SignUpInput{Email: email, Role: models.RoleDriver, Document: cpf, FullName: "Motorista " + email})
	require.NoError(t, f.svc.Profile().Approve(context.Background(), d.ID))
	p, err := f.svc.Profile().Get(context.Background(), d.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) tariff(t *testing.T) *models.Tariff {
	t.Helper()
	tr, err := f.svc.Tariff().Create(context.Background(), &models.Tariff{
		Name:        "Moto Expressa",
		VehicleType: models.VehicleMoto,
		BaseFee:     800,
		PerKmFee:    250,
		DriverShare: 80,
		IsActive:    true,
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) order(t *testing.T, client *models.Profile, tariffID int64, km float64) *models.Order {
	t.Helper()
	o, err := f.svc.Order().Create(context.Background(), client, CreateOrderInput{
		TariffID:       tariffID,
		PickupAddress:  "Av. Paulista, 1000",
		PickupCEP:      "01310-100",
		DropoffAddress: "Rua Augusta, 500",
		DropoffCEP:     "01305000",
		DistanceKm:     km,
	})
	require.NoError(t, err)
	return o
}

// deliver runs an order through accept, pick-up and completion.
func (f *fixture) deliver(t *testing.T, driver *models.Profile, orderID int64) *models.Delivery {
	t.Helper()
	ctx := context.Background()
	d, err := f.svc.Delivery().Accept(ctx, driver, orderID)
	require.NoError(t, err)
	_, err = f.svc.Delivery().PickUp(ctx, driver, d.ID)
	require.NoError(t, err)
	d, err = f.svc.Delivery().Complete(ctx, driver, d.ID, "https://cdn.example.com/proof.jpg")
	require.NoError(t, err)
	return d
}

func (f *fixture) notifications(t *testing.T, profileID int64) []*models.Notification {
	t.Helper()
	list, err := f.svc.Notification().List(context.Background(), profileID, false, 0)
	require.NoError(t, err)
	return list
}
