package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/config"
	"entregas/pkg/auth"
	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/service"
	"entregas/storage/memory"
)

type env struct {
	now   time.Time
	db    *memory.Store
	svc   service.IServiceManager
	sched *Scheduler
}

func testConfig() config.Config {
	return config.Config{
		Timezone:             "UTC",
		RankSyncSchedule:     "@hourly",
		ExpireOrdersSchedule: "0 3 * * *",
		PendingOrderTTL:      24 * time.Hour,
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return e.now }
	e.db = memory.New(memory.WithClock(clock), memory.WithDefaultTariffs())
	e.svc = service.New(e.db, logger.NewNop(), service.Options{
		Tokens: auth.NewTokenManager("test-secret", time.Hour),
		Now:    clock,
	})

	sched, err := New(testConfig(), e.svc, logger.NewNop())
	require.NoError(t, err)
	e.sched = sched
	return e
}

func (e *env) signUp(t *testing.T, email, role, doc string) *models.Profile {
	t.Helper()
	sess, err := e.svc.Auth().SignUp(context.Background(), service.SignUpInput{
		Email: email, Password: "segredo123", FullName: "Teste", Role: role,
		Document: doc, Phone: "11987654321", CEP: "01310100",
	})
	require.NoError(t, err)
	return sess.Profile
}

func TestNewRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.ExpireOrdersSchedule = "every day"
	_, err := New(cfg, nil, logger.NewNop())
	assert.Error(t, err)
}

func TestNewFallsBackToUTC(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Nowhere/Atlantis"
	s, err := New(cfg, nil, logger.NewNop())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)
}

func TestExpireOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	client := e.signUp(t, "cliente@example.com", models.RoleClient, "529.982.247-25")

	create := func() *models.Order {
		o, err := e.svc.Order().Create(ctx, client, service.CreateOrderInput{
			TariffID: 1, PickupAddress: "Av. Paulista, 1000", PickupCEP: "01310100",
			DropoffAddress: "Rua Augusta, 500", DropoffCEP: "01305000", DistanceKm: 1,
		})
		require.NoError(t, err)
		return o
	}

	old := create()
	e.now = e.now.Add(20 * time.Hour)
	fresh := create()
	e.now = e.now.Add(5 * time.Hour)

	n, err := e.sched.ExpireOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.svc.Order().Get(ctx, client, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)

	got, err = e.svc.Order().Get(ctx, client, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)

	n, err = e.sched.ExpireOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSyncRanksFixesDriftedTiers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.signUp(t, "um@example.com", models.RoleDriver, "111.444.777-35")
	d2 := e.signUp(t, "dois@example.com", models.RoleDriver, "390.533.447-05")
	e.signUp(t, "cliente@example.com", models.RoleClient, "529.982.247-25")

	require.NoError(t, e.db.Profile().UpdateRankTier(ctx, d1.ID, "ouro"))

	n, err := e.sched.SyncRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for _, id := range []int64{d1.ID, d2.ID} {
		p, err := e.svc.Profile().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "bronze", p.RankTier)
	}

	n, err = e.sched.SyncRanks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSyncRanksStopsOnCancelledContext(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, "um@example.com", models.RoleDriver, "111.444.777-35")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.sched.SyncRanks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
