package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/models"
	"entregas/storage"
	"entregas/storage/memory"
	"entregas/storage/storagetest"
)

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.IStorage { return memory.New() })
}

// A frozen clock gives every row the same timestamp, so ordering falls
// back to ids the way the postgres queries do.
func TestStoreConformanceFrozenClock(t *testing.T) {
	at := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	storagetest.Run(t, func(*testing.T) storage.IStorage {
		return memory.New(memory.WithClock(func() time.Time { return at }))
	})
}

func TestDefaultTariffsMatchMigration(t *testing.T) {
	db := memory.New(memory.WithDefaultTariffs())

	list, err := db.Tariff().GetAll(context.Background(), true)
	require.NoError(t, err)
	got := make(map[string][3]int64)
	for _, tr := range list {
		got[tr.Name] = [3]int64{tr.BaseFee, tr.PerKmFee, int64(tr.DriverShare)}
	}
	assert.Equal(t, map[string][3]int64{
		"Moto Expressa": {800, 150, 80},
		"Carro":         {1500, 250, 75},
		"Van Atacado":   {4000, 400, 70},
	}, got)
}

func TestOrdersUseClockForRecency(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	db := memory.New(memory.WithClock(func() time.Time { return now }), memory.WithDefaultTariffs())
	ctx := context.Background()

	client, err := db.Profile().Create(ctx, &models.Profile{Email: "c@example.com", Role: models.RoleClient})
	require.NoError(t, err)
	create := func(at time.Time) *models.Order {
		now = at
		o, err := db.Order().Create(ctx, &models.Order{ClientID: client.ID, TariffID: 1, Price: 1000, Status: models.OrderPending})
		require.NoError(t, err)
		return o
	}
	late := create(time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC))
	early := create(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	mine, err := db.Order().GetClientOrders(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, late.ID, mine[0].ID, "ordered by creation time, not id")
	assert.Equal(t, early.ID, mine[1].ID)

	queue, err := db.Order().GetPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, early.ID, queue[0].ID)
}
