package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/models"
)

func TestOrderDeliveryAndRatingFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	client := f.client(t)
	tr := f.tariff(t)
	o := f.order(t, client, tr.ID, 4.2)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, int64(800+250*5), o.Price)
	assert.Equal(t, "01305-000", o.DropoffCEP)

	pending := f.signUp(t, SignUpInput{Email: "novo@example.com", Role: models.RoleDriver, Document: "39053344705"})
	_, err := f.svc.Delivery().Accept(ctx, pending, o.ID)
	assert.ErrorIs(t, err, ErrDriverNotApproved)
	_, err = f.svc.Order().ListAvailable(ctx, pending)
	assert.ErrorIs(t, err, ErrDriverNotApproved)

	driver := f.approvedDriver(t, "moto@example.com", cpfDriver)
	available, err := f.svc.Order().ListAvailable(ctx, driver)
	require.NoError(t, err)
	require.Len(t, available, 1)

	d, err := f.svc.Delivery().Accept(ctx, driver, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1640), d.DriverEarning)

	other := f.approvedDriver(t, "van@example.com", "935.411.347-65")
	_, err = f.svc.Delivery().Accept(ctx, other, o.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.Delivery().PickUp(ctx, other, d.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Delivery().Complete(ctx, driver, d.ID, "")
	assert.ErrorIs(t, err, ErrConflict, "cannot complete before pick-up")

	_, err = f.svc.Rating().Rate(ctx, client, o.ID, 5, "")
	assert.ErrorIs(t, err, ErrConflict, "cannot rate before delivery")

	_, err = f.svc.Delivery().PickUp(ctx, driver, d.ID)
	require.NoError(t, err)
	_, err = f.svc.Delivery().Complete(ctx, driver, d.ID, "ftp://nope")
	assert.ErrorIs(t, err, ErrInvalidInput)
	done, err := f.svc.Delivery().Complete(ctx, driver, d.ID, "https://cdn.example.com/p.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, done.Status)

	got, err := f.svc.Order().Get(ctx, client, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, got.Status)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, driver.ID, *got.DriverID)

	_, err = f.svc.Order().Get(ctx, other, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Rating().Rate(ctx, client, o.ID, 6, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.Rating().Rate(ctx, other, o.ID, 4, "")
	assert.ErrorIs(t, err, ErrForbidden)

	r, err := f.svc.Rating().Rate(ctx, client, o.ID, 4, " Rápido ")
	require.NoError(t, err)
	assert.Equal(t, driver.ID, r.DriverID)
	assert.Equal(t, "Rápido", r.Comment)

	_, err = f.svc.Rating().Rate(ctx, client, o.ID, 5, "")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	p, err := f.svc.Profile().Get(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedDeliveries)
	assert.InDelta(t, 4.0, p.AvgRating, 0.001)

	titles := map[string]bool{}
	for _, n := range f.notifications(t, client.ID) {
		titles[n.Title] = true
	}
	for _, key := range []string{"order_created_title", "order_accepted_title", "order_picked_title", "order_delivered_title"} {
		assert.True(t, titles[messages[key]], key)
	}
}

func TestCreateOrderRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	driver := f.approvedDriver(t, "moto@example.com", cpfDriver)
	tr := f.tariff(t)

	in := CreateOrderInput{
		TariffID: tr.ID, PickupAddress: "A", PickupCEP: "01310100",
		DropoffAddress: "B", DropoffCEP: "01310100", DistanceKm: 3,
	}

	_, err := f.svc.Order().Create(ctx, driver, in)
	assert.ErrorIs(t, err, ErrForbidden)

	bad := in
	bad.DropoffCEP = "123"
	_, err = f.svc.Order().Create(ctx, client, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = in
	bad.DistanceKm = 0
	_, err = f.svc.Order().Create(ctx, client, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = in
	bad.TariffID = 999
	_, err = f.svc.Order().Create(ctx, client, bad)
	assert.ErrorIs(t, err, ErrNotFound)

	tr.IsActive = false
	_, err = f.svc.Tariff().Update(ctx, tr)
	require.NoError(t, err)
	_, err = f.svc.Order().Create(ctx, client, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	client := f.client(t)
	driver := f.approvedDriver(t, "moto@example.com", cpfDriver)
	tr := f.tariff(t)

	t.Run("owner cancels pending", func(t *testing.T) {
		o := f.order(t, client, tr.ID, 1)
		require.NoError(t, f.svc.Order().Cancel(ctx, client, o.ID))
		assert.ErrorIs(t, f.svc.Order().Cancel(ctx, client, o.ID), ErrConflict)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		o := f.order(t, client, tr.ID, 1)
		assert.ErrorIs(t, f.svc.Order().Cancel(ctx, driver, o.ID), ErrForbidden)
	})

	t.Run("owner cannot cancel after pick-up but admin can", func(t *testing.T) {
		o := f.order(t, client, tr.ID, 1)
		d, err := f.svc.Delivery().Accept(ctx, driver, o.ID)
		require.NoError(t, err)
		_, err = f.svc.Delivery().PickUp(ctx, driver, d.ID)
		require.NoError(t, err)

		assert.ErrorIs(t, f.svc.Order().Cancel(ctx, client, o.ID), ErrConflict)
		require.NoError(t, f.svc.Order().Cancel(ctx, admin, o.ID))

		list := f.notifications(t, driver.ID)
		require.NotEmpty(t, list)
		assert.Equal(t, messages["order_cancelled_title"], list[0].Title)
	})

	t.Run("delivered orders are final", func(t *testing.T) {
		o := f.order(t, client, tr.ID, 1)
		f.deliver(t, driver, o.ID)
		assert.ErrorIs(t, f.svc.Order().Cancel(ctx, admin, o.ID), ErrConflict)
	})
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	tr := f.tariff(t)

	old := f.order(t, client, tr.ID, 2)
	f.now = f.now.Add(20 * time.Hour)
	fresh := f.order(t, client, tr.ID, 2)
	f.now = f.now.Add(5 * time.Hour)

	n, err := f.svc.Order().ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.Order().Get(ctx, client, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	got, err = f.svc.Order().Get(ctx, client, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)

	assert.Equal(t, messages["order_cancelled_title"], f.notifications(t, client.ID)[0].Title)
}

func TestActiveDeliveries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	driver := f.approvedDriver(t, "moto@example.com", cpfDriver)
	tr := f.tariff(t)

	f.deliver(t, driver, f.order(t, client, tr.ID, 1).ID)
	_, err := f.svc.Delivery().Accept(ctx, driver, f.order(t, client, tr.ID, 1).ID)
	require.NoError(t, err)

	all, err := f.svc.Delivery().ListForDriver(ctx, driver.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.svc.Delivery().Active(ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.OrderAccepted, active[0].Status)
}
