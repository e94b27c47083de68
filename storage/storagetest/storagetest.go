// Package storagetest holds behaviour shared by every storage.IStorage
// backend: sentinel errors, guarded status transitions and list ordering.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/models"
	"entregas/storage"
)

// Run executes the shared cases. open must return an empty store on every call.
func Run(t *testing.T, open func(t *testing.T) storage.IStorage) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s *seed)
	}{
		{"Profiles", testProfiles},
		{"TelegramLink", testTelegramLink},
		{"Leaderboard", testLeaderboard},
		{"Tariffs", testTariffs},
		{"OrderTransitions", testOrderTransitions},
		{"OrderLists", testOrderLists},
		{"Deliveries", testDeliveries},
		{"Ratings", testRatings},
		{"Withdrawals", testWithdrawals},
		{"Notifications", testNotifications},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.fn(t, &seed{t: t, ctx: context.Background(), stg: open(t)})
		})
	}
}

type seed struct {
	t   *testing.T
	ctx context.Context
	stg storage.IStorage
	n   int
}

func (s *seed) profile(role string) *models.Profile {
	s.t.Helper()
	s.n++
	p, err := s.stg.Profile().Create(s.ctx, &models.Profile{
		Email:        fmt.Sprintf("%s%d@example.com", role, s.n),
		PasswordHash: "hash",
		FullName:     fmt.Sprintf("Perfil %d", s.n),
		Role:         role,
	})
	require.NoError(s.t, err)
	return p
}

func (s *seed) tariff(name string, baseFee int64) *models.Tariff {
	s.t.Helper()
	tr, err := s.stg.Tariff().Create(s.ctx, &models.Tariff{
		Name: name, VehicleType: models.VehicleMoto, BaseFee: baseFee, PerKmFee: 100, DriverShare: 80, IsActive: true,
	})
	require.NoError(s.t, err)
	return tr
}

func (s *seed) order(clientID, tariffID int64) *models.Order {
	s.t.Helper()
	o, err := s.stg.Order().Create(s.ctx, &models.Order{
		ClientID: clientID, TariffID: tariffID,
		PickupAddress: "Av. Paulista, 1000", PickupCEP: "01310100",
		DropoffAddress: "Rua Augusta, 500", DropoffCEP: "01305000",
		DistanceKm: 2, Price: 1000, Status: models.OrderPending,
	})
	require.NoError(s.t, err)
	return o
}

// delivered runs a fresh order through accept, pickup and completion.
func (s *seed) delivered(clientID, driverID, tariffID, earning int64) (*models.Order, *models.Delivery) {
	s.t.Helper()
	o := s.order(clientID, tariffID)
	d, err := s.stg.Order().Accept(s.ctx, o.ID, driverID, earning)
	require.NoError(s.t, err)
	require.NoError(s.t, s.stg.Delivery().PickUp(s.ctx, d.ID))
	require.NoError(s.t, s.stg.Delivery().Complete(s.ctx, d.ID, "https://cdn.example.com/p.jpg"))
	return o, d
}

func profileIDs(list []*models.Profile) []int64 {
	out := make([]int64, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func orderIDs(list []*models.Order) []int64 {
	out := make([]int64, 0, len(list))
	for _, o := range list {
		out = append(out, o.ID)
	}
	return out
}

func testProfiles(t *testing.T, s *seed) {
	client := s.profile(models.RoleClient)
	_, err := s.stg.Profile().Create(s.ctx, &models.Profile{Email: client.Email, PasswordHash: "x", FullName: "X", Role: models.RoleClient})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	missing, err := s.stg.Profile().GetByID(s.ctx, client.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)
	missing, err = s.stg.Profile().GetByEmail(s.ctx, "ninguem@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.ErrorIs(t, s.stg.Profile().SetApproved(s.ctx, client.ID+1000), storage.ErrNotFound)

	d1 := s.profile(models.RoleDriver)
	d2 := s.profile(models.RoleDriver)

	all, err := s.stg.Profile().List(s.ctx, models.ProfileFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{d2.ID, d1.ID, client.ID}, profileIDs(all), "newest first")

	drivers, err := s.stg.Profile().List(s.ctx, models.ProfileFilter{Role: models.RoleDriver})
	require.NoError(t, err)
	assert.Equal(t, []int64{d2.ID, d1.ID}, profileIDs(drivers))

	require.NoError(t, s.stg.Profile().SetApproved(s.ctx, d1.ID))
	require.NoError(t, s.stg.Profile().SetBlocked(s.ctx, d1.ID, true))
	got, err := s.stg.Profile().GetByID(s.ctx, d1.ID)
	require.NoError(t, err)
	assert.True(t, got.Blocked)
	assert.False(t, got.Approved, "blocking revokes approval")

	pending, err := s.stg.Profile().List(s.ctx, models.ProfileFilter{OnlyPending: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{d2.ID}, profileIDs(pending))

	counts, err := s.stg.Profile().CountByRole(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.RoleClient])
	assert.Equal(t, 2, counts[models.RoleDriver])
}

func testTelegramLink(t *testing.T, s *seed) {
	a := s.profile(models.RoleClient)
	b := s.profile(models.RoleDriver)
	const chat = int64(424242)

	require.NoError(t, s.stg.Profile().SetTelegramLinkCode(s.ctx, a.ID, "code-a"))
	linked, err := s.stg.Profile().LinkTelegram(s.ctx, "code-a", chat)
	require.NoError(t, err)
	assert.Equal(t, a.ID, linked.ID)
	require.NotNil(t, linked.TelegramChatID)
	assert.Equal(t, chat, *linked.TelegramChatID)

	_, err = s.stg.Profile().LinkTelegram(s.ctx, "code-a", chat+1)
	assert.ErrorIs(t, err, storage.ErrNotFound, "codes are single use")
	_, err = s.stg.Profile().LinkTelegram(s.ctx, "nao-existe", chat)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byChat, err := s.stg.Profile().GetByTelegramChat(s.ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, a.ID, byChat.ID, "a failed link keeps the current owner")

	require.NoError(t, s.stg.Profile().SetTelegramLinkCode(s.ctx, b.ID, "code-b"))
	linked, err = s.stg.Profile().LinkTelegram(s.ctx, "code-b", chat)
	require.NoError(t, err)
	assert.Equal(t, b.ID, linked.ID)

	byChat, err = s.stg.Profile().GetByTelegramChat(s.ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byChat.ID)
	old, err := s.stg.Profile().GetByID(s.ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, old.TelegramChatID)
}

func testLeaderboard(t *testing.T, s *seed) {
	tr := s.tariff("Moto", 800)
	client := s.profile(models.RoleClient)
	d1 := s.profile(models.RoleDriver)
	d2 := s.profile(models.RoleDriver)
	d3 := s.profile(models.RoleDriver)
	d4 := s.profile(models.RoleDriver)
	blocked := s.profile(models.RoleDriver)

	s.delivered(client.ID, d1.ID, tr.ID, 800)
	o, _ := s.delivered(client.ID, d2.ID, tr.ID, 800)
	_, err := s.stg.Rating().Create(s.ctx, &models.Rating{OrderID: o.ID, DriverID: d2.ID, ClientID: client.ID, Stars: 5})
	require.NoError(t, err)
	s.delivered(client.ID, blocked.ID, tr.ID, 800)
	s.delivered(client.ID, blocked.ID, tr.ID, 800)
	require.NoError(t, s.stg.Profile().SetBlocked(s.ctx, blocked.ID, true))

	board, err := s.stg.Profile().Leaderboard(s.ctx, 10)
	require.NoError(t, err)
	ids := make([]int64, 0, len(board))
	for _, e := range board {
		ids = append(ids, e.ProfileID)
	}
	assert.Equal(t, []int64{d2.ID, d1.ID, d3.ID, d4.ID}, ids)

	top, err := s.stg.Profile().Leaderboard(s.ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, d2.ID, top[0].ProfileID)
	assert.InDelta(t, 5.0, top[0].AvgRating, 0.001)
	assert.Equal(t, 1, top[0].CompletedDeliveries)
}

func testTariffs(t *testing.T, s *seed) {
	bike := s.tariff("Bike", 500)
	carro := s.tariff("Carro", 1500)
	moto := s.tariff("Moto", 800)

	all, err := s.stg.Tariff().GetAll(s.ctx, false)
	require.NoError(t, err)
	var names []string
	for _, tr := range all {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"Bike", "Moto", "Carro"}, names, "cheapest first")

	_, err = s.stg.Tariff().Create(s.ctx, &models.Tariff{Name: "Carro", VehicleType: models.VehicleCarro, BaseFee: 1, DriverShare: 50})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	moto.Name = "Carro"
	assert.ErrorIs(t, s.stg.Tariff().Update(s.ctx, moto), storage.ErrDuplicate)
	moto.Name = "Moto"
	moto.BaseFee = 900
	require.NoError(t, s.stg.Tariff().Update(s.ctx, moto))
	assert.ErrorIs(t, s.stg.Tariff().Update(s.ctx, &models.Tariff{ID: moto.ID + 1000, Name: "Z", VehicleType: models.VehicleMoto}), storage.ErrNotFound)

	s.order(s.profile(models.RoleClient).ID, carro.ID)
	require.NoError(t, s.stg.Tariff().Delete(s.ctx, carro.ID))
	kept, err := s.stg.Tariff().GetByID(s.ctx, carro.ID)
	require.NoError(t, err)
	require.NotNil(t, kept, "tariffs used by orders are only deactivated")
	assert.False(t, kept.IsActive)

	require.NoError(t, s.stg.Tariff().Delete(s.ctx, bike.ID))
	gone, err := s.stg.Tariff().GetByID(s.ctx, bike.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.ErrorIs(t, s.stg.Tariff().Delete(s.ctx, bike.ID), storage.ErrNotFound)

	active, err := s.stg.Tariff().GetAll(s.ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(900), active[0].BaseFee)
}

func testOrderTransitions(t *testing.T, s *seed) {
	tr := s.tariff("Moto", 800)
	client := s.profile(models.RoleClient)
	driver := s.profile(models.RoleDriver)
	other := s.profile(models.RoleDriver)
	o := s.order(client.ID, tr.ID)

	d, err := s.stg.Order().Accept(s.ctx, o.ID, driver.ID, 640)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, d.Status)
	_, err = s.stg.Order().Accept(s.ctx, o.ID, other.ID, 640)
	assert.ErrorIs(t, err, storage.ErrConflict, "an order is accepted once")

	got, err := s.stg.Order().GetByID(s.ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, driver.ID, *got.DriverID)

	assert.ErrorIs(t, s.stg.Order().Cancel(s.ctx, o.ID, models.OrderPending), storage.ErrConflict)
	require.NoError(t, s.stg.Order().Cancel(s.ctx, o.ID, models.OrderPending, models.OrderAccepted))

	got, err = s.stg.Order().GetByID(s.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	dl, err := s.stg.Delivery().GetByOrderID(s.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, dl.Status)
	assert.ErrorIs(t, s.stg.Delivery().PickUp(s.ctx, d.ID), storage.ErrConflict)
}

func testOrderLists(t *testing.T, s *seed) {
	rate, err := s.stg.Order().GetGlobalCancelRate(s.ctx)
	require.NoError(t, err)
	assert.Zero(t, rate)

	tr := s.tariff("Moto", 800)
	a := s.profile(models.RoleClient)
	b := s.profile(models.RoleClient)
	driver := s.profile(models.RoleDriver)
	o1 := s.order(a.ID, tr.ID)
	o2 := s.order(a.ID, tr.ID)
	o3 := s.order(a.ID, tr.ID)
	o4 := s.order(b.ID, tr.ID)

	mine, err := s.stg.Order().GetClientOrders(s.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{o3.ID, o2.ID, o1.ID}, orderIDs(mine), "newest first")

	queue, err := s.stg.Order().GetPendingOrders(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{o1.ID, o2.ID, o3.ID, o4.ID}, orderIDs(queue), "oldest first")

	_, err = s.stg.Order().Accept(s.ctx, o2.ID, driver.ID, 640)
	require.NoError(t, err)
	require.NoError(t, s.stg.Order().Cancel(s.ctx, o1.ID, models.OrderPending))

	all, err := s.stg.Order().GetAll(s.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{o4.ID, o3.ID, o2.ID, o1.ID}, orderIDs(all))
	pending, err := s.stg.Order().GetAll(s.ctx, models.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, []int64{o4.ID, o3.ID}, orderIDs(pending))

	counts, err := s.stg.Order().CountByStatus(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.OrderPending])
	assert.Equal(t, 1, counts[models.OrderAccepted])
	assert.Equal(t, 1, counts[models.OrderCancelled])

	rate, err = s.stg.Order().GetGlobalCancelRate(s.ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, rate, 0.0001, "a fraction, not a percentage")
}

func testDeliveries(t *testing.T, s *seed) {
	tr := s.tariff("Moto", 800)
	client := s.profile(models.RoleClient)
	driver := s.profile(models.RoleDriver)
	o1 := s.order(client.ID, tr.ID)
	o2 := s.order(client.ID, tr.ID)

	d1, err := s.stg.Order().Accept(s.ctx, o1.ID, driver.ID, 640)
	require.NoError(t, err)
	assert.ErrorIs(t, s.stg.Delivery().Complete(s.ctx, d1.ID, ""), storage.ErrConflict, "pickup comes first")
	require.NoError(t, s.stg.Delivery().PickUp(s.ctx, d1.ID))
	assert.ErrorIs(t, s.stg.Delivery().PickUp(s.ctx, d1.ID), storage.ErrConflict)
	require.NoError(t, s.stg.Delivery().Complete(s.ctx, d1.ID, "https://cdn.example.com/p.jpg"))
	assert.ErrorIs(t, s.stg.Delivery().Complete(s.ctx, d1.ID, ""), storage.ErrConflict)

	d2, err := s.stg.Order().Accept(s.ctx, o2.ID, driver.ID, 500)
	require.NoError(t, err)

	list, err := s.stg.Delivery().GetDriverDeliveries(s.ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, d2.ID, list[0].ID, "newest first")
	assert.Equal(t, d1.ID, list[1].ID)
	assert.Equal(t, models.OrderDelivered, list[1].Status)
	assert.NotNil(t, list[1].DeliveredAt)

	earned, err := s.stg.Delivery().SumEarnings(s.ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(640), earned)

	got, err := s.stg.Order().GetByID(s.ctx, o1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, got.Status)
	p, err := s.stg.Profile().GetByID(s.ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedDeliveries)
}

func testRatings(t *testing.T, s *seed) {
	tr := s.tariff("Moto", 800)
	client := s.profile(models.RoleClient)
	driver := s.profile(models.RoleDriver)

	var first *models.Order
	for _, stars := range []int{5, 4, 3} {
		o, _ := s.delivered(client.ID, driver.ID, tr.ID, 640)
		if first == nil {
			first = o
		}
		_, err := s.stg.Rating().Create(s.ctx, &models.Rating{OrderID: o.ID, DriverID: driver.ID, ClientID: client.ID, Stars: stars})
		require.NoError(t, err)
	}
	_, err := s.stg.Rating().Create(s.ctx, &models.Rating{OrderID: first.ID, DriverID: driver.ID, ClientID: client.ID, Stars: 1})
	assert.ErrorIs(t, err, storage.ErrDuplicate, "one rating per order")

	latest, err := s.stg.Rating().GetDriverRatings(s.ctx, driver.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 3, latest[0].Stars, "limit keeps the newest")
	assert.Equal(t, 4, latest[1].Stars)

	p, err := s.stg.Profile().GetByID(s.ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.RatingCount)
	assert.InDelta(t, 4.0, p.AvgRating, 0.001)
}

func testWithdrawals(t *testing.T, s *seed) {
	tr := s.tariff("Moto", 800)
	client := s.profile(models.RoleClient)
	admin := s.profile(models.RoleAdmin)
	driver := s.profile(models.RoleDriver)
	s.delivered(client.ID, driver.ID, tr.ID, 1000)

	request := func(amount int64) (*models.Withdrawal, error) {
		return s.stg.Withdrawal().Create(s.ctx, &models.Withdrawal{
			DriverID: driver.ID, Amount: amount, PixKeyType: "cpf", PixKey: "11144477735",
		})
	}

	_, err := request(1500)
	assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
	w1, err := request(600)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, w1.Status)
	_, err = request(500)
	assert.ErrorIs(t, err, storage.ErrInsufficientFunds, "pending requests hold the balance")
	w2, err := request(400)
	require.NoError(t, err)

	require.NoError(t, s.stg.Withdrawal().Review(s.ctx, w1.ID, models.WithdrawalPending, models.WithdrawalApproved, admin.ID, ""))
	assert.ErrorIs(t, s.stg.Withdrawal().Review(s.ctx, w1.ID, models.WithdrawalPending, models.WithdrawalRejected, admin.ID, ""), storage.ErrConflict)
	require.NoError(t, s.stg.Withdrawal().Review(s.ctx, w2.ID, models.WithdrawalPending, models.WithdrawalRejected, admin.ID, "chave inválida"))

	w3, err := request(300)
	require.NoError(t, err, "rejected requests release the balance")

	mine, err := s.stg.Withdrawal().GetDriverWithdrawals(s.ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, []int64{w3.ID, w2.ID, w1.ID}, []int64{mine[0].ID, mine[1].ID, mine[2].ID})
	assert.Equal(t, "chave inválida", mine[1].Note)
	require.NotNil(t, mine[2].ReviewedBy)
	assert.Equal(t, admin.ID, *mine[2].ReviewedBy)

	queue, err := s.stg.Withdrawal().GetByStatus(s.ctx, models.WithdrawalPending)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, w3.ID, queue[0].ID)

	withdrawn, pending, err := s.stg.Withdrawal().Totals(s.ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), withdrawn)
	assert.Equal(t, int64(300), pending)
	n, err := s.stg.Withdrawal().CountPending(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testNotifications(t *testing.T, s *seed) {
	p := s.profile(models.RoleClient)
	q := s.profile(models.RoleClient)

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		n, err := s.stg.Notification().Create(s.ctx, &models.Notification{ProfileID: p.ID, Kind: models.NotifyOrder, Title: title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	list, err := s.stg.Notification().GetByProfile(s.ctx, p.ID, false, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].Title)
	assert.Equal(t, "b", list[1].Title)

	assert.ErrorIs(t, s.stg.Notification().MarkRead(s.ctx, q.ID, ids[0]), storage.ErrNotFound)
	require.NoError(t, s.stg.Notification().MarkRead(s.ctx, p.ID, ids[2]))
	require.NoError(t, s.stg.Notification().MarkRead(s.ctx, p.ID, ids[2]))

	unread, err := s.stg.Notification().GetByProfile(s.ctx, p.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, ids[1], unread[0].ID)

	marked, err := s.stg.Notification().MarkAllRead(s.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)
	count, err := s.stg.Notification().UnreadCount(s.ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
