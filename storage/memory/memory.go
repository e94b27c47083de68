// Package memory is an in-process storage.IStorage used for local runs
// without Postgres and in tests. It enforces the same status guards as the
// postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/models"
	"entregas/storage"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time

	profiles      map[int64]*models.Profile
	vehicles      map[int64]*models.DriverVehicle
	tariffs       map[int64]*models.Tariff
	orders        map[int64]*models.Order
	deliveries    map[int64]*models.Delivery
	ratings       map[int64]*models.Rating
	withdrawals   map[int64]*models.Withdrawal
	notifications []*models.Notification
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDefaultTariffs seeds the same price table as the initial migration.
func WithDefaultTariffs() Option {
	return func(s *Store) {
		for _, t := range []models.Tariff{
			{Name: "Moto Expressa", VehicleType: models.VehicleMoto, BaseFee: 800, PerKmFee: 150, DriverShare: 80, IsActive: true},
			{Name: "Carro", VehicleType: models.VehicleCarro, BaseFee: 1500, PerKmFee: 250, DriverShare: 75, IsActive: true},
			{Name: "Van Atacado", VehicleType: models.VehicleVan, BaseFee: 4000, PerKmFee: 400, DriverShare: 70, IsActive: true},
		} {
			t.ID = s.id()
			t.CreatedAt = s.now()
			s.tariffs[t.ID] = &t
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		now:         time.Now,
		profiles:    make(map[int64]*models.Profile),
		vehicles:    make(map[int64]*models.DriverVehicle),
		tariffs:     make(map[int64]*models.Tariff),
		orders:      make(map[int64]*models.Order),
		deliveries:  make(map[int64]*models.Delivery),
		ratings:     make(map[int64]*models.Rating),
		withdrawals: make(map[int64]*models.Withdrawal),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (db *Store) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *Store) Profile() storage.IProfileStorage           { return (*memProfiles)(db) }
func (db *Store) Tariff() storage.ITariffStorage             { return (*memTariffs)(db) }
func (db *Store) Order() storage.IOrderStorage               { return (*memOrders)(db) }
func (db *Store) Delivery() storage.IDeliveryStorage         { return (*memDeliveries)(db) }
func (db *Store) Rating() storage.IRatingStorage             { return (*memRatings)(db) }
func (db *Store) Withdrawal() storage.IWithdrawalStorage     { return (*memWithdrawals)(db) }
func (db *Store) Notification() storage.INotificationStorage { return (*memNotifications)(db) }
func (db *Store) Close()                                     {}
func (db *Store) GetPool() *pgxpool.Pool                     { return nil }

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// newer reports whether (ti, idi) sorts before (tj, idj) in newest-first
// order. Equal timestamps fall back to the higher id.
func newer(ti, tj time.Time, idi, idj int64) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}

func older(ti, tj time.Time, idi, idj int64) bool {
	return newer(tj, ti, idj, idi)
}

// profiles

type memProfiles Store

func (r *memProfiles) db() *Store { return (*Store)(r) }

func (r *memProfiles) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, other := range db.profiles {
		if other.Email == p.Email || (p.Document != "" && other.Document == p.Document) {
			return nil, storage.ErrDuplicate
		}
	}
	cp := *p
	cp.ID = db.id()
	cp.RankTier = "bronze"
	cp.CreatedAt = db.now()
	cp.UpdatedAt = cp.CreatedAt
	db.profiles[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memProfiles) GetByID(_ context.Context, id int64) (*models.Profile, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if p, ok := db.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memProfiles) find(match func(*models.Profile) bool) *models.Profile {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, id := range sortedKeys(db.profiles) {
		if p := db.profiles[id]; match(p) {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (r *memProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	return r.find(func(p *models.Profile) bool { return p.Email == email }), nil
}

func (r *memProfiles) GetByTelegramChat(_ context.Context, chatID int64) (*models.Profile, error) {
	return r.find(func(p *models.Profile) bool { return p.TelegramChatID != nil && *p.TelegramChatID == chatID }), nil
}

func (r *memProfiles) List(_ context.Context, f models.ProfileFilter) ([]*models.Profile, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Profile
	for _, id := range sortedKeys(db.profiles) {
		p := db.profiles[id]
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.OnlyPending && (p.Role != models.RoleDriver || p.Approved || p.Blocked) {
			continue
		}
		if f.OnlyBlocked && !p.Blocked {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *memProfiles) update(id int64, fn func(*models.Profile)) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.profiles[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(p)
	p.UpdatedAt = db.now()
	return nil
}

func (r *memProfiles) UpdateContact(_ context.Context, id int64, phone, cep string) error {
	return r.update(id, func(p *models.Profile) { p.Phone, p.CEP = phone, cep })
}

func (r *memProfiles) SetApproved(_ context.Context, id int64) error {
	return r.update(id, func(p *models.Profile) { p.Approved, p.Blocked = true, false })
}

func (r *memProfiles) SetBlocked(_ context.Context, id int64, blocked bool) error {
	return r.update(id, func(p *models.Profile) {
		p.Blocked = blocked
		if blocked {
			p.Approved = false
		}
	})
}

func (r *memProfiles) SetTelegramLinkCode(_ context.Context, id int64, code string) error {
	return r.update(id, func(p *models.Profile) { p.TelegramLinkCode = code })
}

func (r *memProfiles) LinkTelegram(_ context.Context, code string, chatID int64) (*models.Profile, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var target *models.Profile
	for _, p := range db.profiles {
		if code != "" && p.TelegramLinkCode == code {
			target = p
		}
	}
	if target == nil {
		return nil, storage.ErrNotFound
	}
	now := db.now()
	for _, p := range db.profiles {
		if p != target && p.TelegramChatID != nil && *p.TelegramChatID == chatID {
			p.TelegramChatID = nil
			p.UpdatedAt = now
		}
	}
	id := chatID
	target.TelegramChatID = &id
	target.TelegramLinkCode = ""
	target.UpdatedAt = now
	cp := *target
	return &cp, nil
}

func (r *memProfiles) UpdateRankTier(_ context.Context, id int64, tier string) error {
	return r.update(id, func(p *models.Profile) { p.RankTier = tier })
}

func (r *memProfiles) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	drivers, _ := r.List(ctx, models.ProfileFilter{Role: models.RoleDriver})
	sort.Slice(drivers, func(i, j int) bool {
		a, b := drivers[i], drivers[j]
		if a.CompletedDeliveries != b.CompletedDeliveries {
			return a.CompletedDeliveries > b.CompletedDeliveries
		}
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		return a.ID < b.ID
	})
	var out []*models.LeaderboardEntry
	for _, d := range drivers {
		if d.Blocked {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, &models.LeaderboardEntry{
			ProfileID:           d.ID,
			FullName:            d.FullName,
			CompletedDeliveries: d.CompletedDeliveries,
			AvgRating:           d.AvgRating,
			RankTier:            d.RankTier,
		})
	}
	return out, nil
}

func (r *memProfiles) UpsertVehicle(_ context.Context, v *models.DriverVehicle) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *v
	cp.UpdatedAt = db.now()
	db.vehicles[v.ProfileID] = &cp
	return nil
}

func (r *memProfiles) GetVehicle(_ context.Context, profileID int64) (*models.DriverVehicle, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if v, ok := db.vehicles[profileID]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *memProfiles) CountByRole(_ context.Context) (map[string]int, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[string]int)
	for _, p := range db.profiles {
		out[p.Role]++
	}
	return out, nil
}

func (r *memProfiles) CountPendingDrivers(ctx context.Context) (int, error) {
	list, _ := r.List(ctx, models.ProfileFilter{OnlyPending: true})
	return len(list), nil
}

func (r *memProfiles) CountBlocked(ctx context.Context) (int, error) {
	list, _ := r.List(ctx, models.ProfileFilter{OnlyBlocked: true})
	return len(list), nil
}

// tariffs

type memTariffs Store

func (r *memTariffs) db() *Store { return (*Store)(r) }

func (r *memTariffs) GetAll(_ context.Context, onlyActive bool) ([]*models.Tariff, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Tariff
	for _, id := range sortedKeys(db.tariffs) {
		t := db.tariffs[id]
		if onlyActive && !t.IsActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BaseFee != out[j].BaseFee {
			return out[i].BaseFee < out[j].BaseFee
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// nameTaken reports whether another tariff already uses name.
func (r *memTariffs) nameTaken(name string, except int64) bool {
	for id, t := range r.db().tariffs {
		if id != except && t.Name == name {
			return true
		}
	}
	return false
}

func (r *memTariffs) GetByID(_ context.Context, id int64) (*models.Tariff, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if t, ok := db.tariffs[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *memTariffs) Create(_ context.Context, t *models.Tariff) (*models.Tariff, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if r.nameTaken(t.Name, 0) {
		return nil, storage.ErrDuplicate
	}
	cp := *t
	cp.ID = db.id()
	cp.CreatedAt = db.now()
	db.tariffs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memTariffs) Update(_ context.Context, t *models.Tariff) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	old, ok := db.tariffs[t.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if r.nameTaken(t.Name, t.ID) {
		return storage.ErrDuplicate
	}
	cp := *t
	cp.CreatedAt = old.CreatedAt
	db.tariffs[t.ID] = &cp
	return nil
}

func (r *memTariffs) Delete(_ context.Context, id int64) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.tariffs[id]
	if !ok {
		return storage.ErrNotFound
	}
	for _, o := range db.orders {
		if o.TariffID == id {
			t.IsActive = false
			return nil
		}
	}
	delete(db.tariffs, id)
	return nil
}

// orders

type memOrders Store

func (r *memOrders) db() *Store { return (*Store)(r) }

func (r *memOrders) withDriver(o *models.Order) *models.Order {
	cp := *o
	for _, d := range r.db().deliveries {
		if d.OrderID == o.ID {
			driverID := d.DriverID
			cp.DriverID = &driverID
		}
	}
	return &cp
}

func (r *memOrders) Create(_ context.Context, o *models.Order) (*models.Order, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *o
	cp.ID = db.id()
	cp.CreatedAt = db.now()
	cp.UpdatedAt = cp.CreatedAt
	db.orders[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memOrders) GetByID(_ context.Context, id int64) (*models.Order, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if o, ok := db.orders[id]; ok {
		return r.withDriver(o), nil
	}
	return nil, nil
}

func (r *memOrders) filter(match func(*models.Order) bool, less func(ti, tj time.Time, idi, idj int64) bool) []*models.Order {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Order
	for _, o := range db.orders {
		if match(o) {
			out = append(out, r.withDriver(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (r *memOrders) GetAll(_ context.Context, status string) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return status == "" || o.Status == status }, newer), nil
}

func (r *memOrders) GetClientOrders(_ context.Context, clientID int64) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.ClientID == clientID }, newer), nil
}

// GetPendingOrders lists the open queue oldest first.
func (r *memOrders) GetPendingOrders(_ context.Context) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.Status == models.OrderPending }, older), nil
}

func (r *memOrders) Accept(_ context.Context, orderID, driverID, earning int64) (*models.Delivery, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.orders[orderID]
	if !ok || o.Status != models.OrderPending {
		return nil, storage.ErrConflict
	}
	o.Status = models.OrderAccepted
	d := &models.Delivery{
		ID:            db.id(),
		OrderID:       orderID,
		DriverID:      driverID,
		DriverEarning: earning,
		Status:        models.OrderAccepted,
		AcceptedAt:    db.now(),
	}
	db.deliveries[d.ID] = d
	cp := *d
	return &cp, nil
}

func (r *memOrders) Cancel(_ context.Context, orderID int64, from ...string) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.orders[orderID]
	if !ok {
		return storage.ErrConflict
	}
	for _, st := range from {
		if o.Status == st {
			o.Status = models.OrderCancelled
			for _, d := range db.deliveries {
				if d.OrderID == orderID {
					d.Status = models.OrderCancelled
				}
			}
			return nil
		}
	}
	return storage.ErrConflict
}

func (r *memOrders) CancelStale(_ context.Context, before time.Time) ([]*models.Order, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Order
	for _, id := range sortedKeys(db.orders) {
		o := db.orders[id]
		if o.Status == models.OrderPending && o.CreatedAt.Before(before) {
			o.Status = models.OrderCancelled
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memOrders) CountByStatus(_ context.Context) (map[string]int, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[string]int)
	for _, o := range db.orders {
		out[o.Status]++
	}
	return out, nil
}

func (r *memOrders) GetDailyOrderCount(_ context.Context) (int, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	y, m, d := db.now().Date()
	n := 0
	for _, o := range db.orders {
		if oy, om, od := o.CreatedAt.Date(); oy == y && om == m && od == d {
			n++
		}
	}
	return n, nil
}

func (r *memOrders) GetGlobalCancelRate(ctx context.Context) (float64, error) {
	counts, _ := r.CountByStatus(ctx)
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0, nil
	}
	return float64(counts[models.OrderCancelled]) / float64(total), nil
}

// deliveries

type memDeliveries Store

func (r *memDeliveries) db() *Store { return (*Store)(r) }

func (r *memDeliveries) GetByID(_ context.Context, id int64) (*models.Delivery, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if d, ok := db.deliveries[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r *memDeliveries) GetByOrderID(_ context.Context, orderID int64) (*models.Delivery, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, d := range db.deliveries {
		if d.OrderID == orderID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memDeliveries) GetDriverDeliveries(_ context.Context, driverID int64) ([]*models.Delivery, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Delivery
	for _, id := range sortedKeys(db.deliveries) {
		if d := db.deliveries[id]; d.DriverID == driverID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].AcceptedAt, out[j].AcceptedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *memDeliveries) PickUp(_ context.Context, id int64) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.deliveries[id]
	if !ok || d.Status != models.OrderAccepted {
		return storage.ErrConflict
	}
	now := db.now()
	d.Status = models.OrderPickedUp
	d.PickedUpAt = &now
	db.orders[d.OrderID].Status = models.OrderPickedUp
	return nil
}

func (r *memDeliveries) Complete(_ context.Context, id int64, proofURL string) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.deliveries[id]
	if !ok || d.Status != models.OrderPickedUp {
		return storage.ErrConflict
	}
	now := db.now()
	d.Status = models.OrderDelivered
	d.DeliveredAt = &now
	d.ProofURL = proofURL
	db.orders[d.OrderID].Status = models.OrderDelivered
	db.profiles[d.DriverID].CompletedDeliveries++
	return nil
}

func (r *memDeliveries) SumEarnings(_ context.Context, driverID int64) (int64, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var total int64
	for _, d := range db.deliveries {
		if d.DriverID == driverID && d.Status == models.OrderDelivered {
			total += d.DriverEarning
		}
	}
	return total, nil
}

// ratings

type memRatings Store

func (r *memRatings) db() *Store { return (*Store)(r) }

func (r *memRatings) Create(_ context.Context, rt *models.Rating) (*models.Rating, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, other := range db.ratings {
		if other.OrderID == rt.OrderID {
			return nil, storage.ErrDuplicate
		}
	}
	cp := *rt
	cp.ID = db.id()
	cp.CreatedAt = db.now()
	db.ratings[cp.ID] = &cp

	sum, n := 0, 0
	for _, other := range db.ratings {
		if other.DriverID == rt.DriverID {
			sum += other.Stars
			n++
		}
	}
	if p, ok := db.profiles[rt.DriverID]; ok {
		p.RatingCount = n
		p.AvgRating = float64(sum) / float64(n)
	}

	out := cp
	return &out, nil
}

func (r *memRatings) GetByOrderID(_ context.Context, orderID int64) (*models.Rating, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, rt := range db.ratings {
		if rt.OrderID == orderID {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRatings) GetDriverRatings(_ context.Context, driverID int64, limit int) ([]*models.Rating, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Rating
	for _, rt := range db.ratings {
		if rt.DriverID == driverID {
			cp := *rt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// withdrawals

type memWithdrawals Store

func (r *memWithdrawals) db() *Store { return (*Store)(r) }

func (r *memWithdrawals) Create(_ context.Context, w *models.Withdrawal) (*models.Withdrawal, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.profiles[w.DriverID]; !ok {
		return nil, storage.ErrNotFound
	}
	var available int64
	for _, d := range db.deliveries {
		if d.DriverID == w.DriverID && d.Status == models.OrderDelivered {
			available += d.DriverEarning
		}
	}
	for _, other := range db.withdrawals {
		if other.DriverID == w.DriverID && other.Status != models.WithdrawalRejected {
			available -= other.Amount
		}
	}
	if available < w.Amount {
		return nil, storage.ErrInsufficientFunds
	}
	cp := *w
	cp.ID = db.id()
	cp.Status = models.WithdrawalPending
	cp.CreatedAt = db.now()
	db.withdrawals[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memWithdrawals) GetByID(_ context.Context, id int64) (*models.Withdrawal, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	if w, ok := db.withdrawals[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (r *memWithdrawals) list(match func(*models.Withdrawal) bool, less func(ti, tj time.Time, idi, idj int64) bool) []*models.Withdrawal {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range db.withdrawals {
		if match(w) {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (r *memWithdrawals) GetDriverWithdrawals(_ context.Context, driverID int64) ([]*models.Withdrawal, error) {
	return r.list(func(w *models.Withdrawal) bool { return w.DriverID == driverID }, newer), nil
}

// GetByStatus lists the review queue oldest first.
func (r *memWithdrawals) GetByStatus(_ context.Context, status string) ([]*models.Withdrawal, error) {
	return r.list(func(w *models.Withdrawal) bool { return w.Status == status }, older), nil
}

func (r *memWithdrawals) Review(_ context.Context, id int64, from, to string, reviewerID int64, note string) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	w, ok := db.withdrawals[id]
	if !ok || w.Status != from {
		return storage.ErrConflict
	}
	now := db.now()
	w.Status = to
	w.ReviewedBy = &reviewerID
	w.ReviewedAt = &now
	w.Note = note
	return nil
}

func (r *memWithdrawals) Totals(_ context.Context, driverID int64) (withdrawn, pending int64, err error) {
	for _, w := range r.list(func(w *models.Withdrawal) bool { return w.DriverID == driverID }, newer) {
		switch w.Status {
		case models.WithdrawalApproved, models.WithdrawalPaid:
			withdrawn += w.Amount
		case models.WithdrawalPending:
			pending += w.Amount
		}
	}
	return withdrawn, pending, nil
}

func (r *memWithdrawals) CountPending(_ context.Context) (int, error) {
	return len(r.list(func(w *models.Withdrawal) bool { return w.Status == models.WithdrawalPending }, older)), nil
}

// notifications

type memNotifications Store

func (r *memNotifications) db() *Store { return (*Store)(r) }

func (r *memNotifications) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *n
	cp.ID = db.id()
	cp.CreatedAt = db.now()
	db.notifications = append(db.notifications, &cp)
	out := cp
	return &out, nil
}

func (r *memNotifications) GetByProfile(_ context.Context, profileID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*models.Notification
	for i := len(db.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := db.notifications[i]
		if n.ProfileID != profileID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memNotifications) MarkRead(_ context.Context, profileID, id int64) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, n := range db.notifications {
		if n.ID == id && n.ProfileID == profileID {
			if n.ReadAt == nil {
				now := db.now()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return storage.ErrNotFound
}

func (r *memNotifications) MarkAllRead(_ context.Context, profileID int64) (int64, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()
	var n int64
	now := db.now()
	for _, item := range db.notifications {
		if item.ProfileID == profileID && item.ReadAt == nil {
			item.ReadAt = &now
			n++
		}
	}
	return n, nil
}

func (r *memNotifications) UnreadCount(ctx context.Context, profileID int64) (int, error) {
	list, _ := r.GetByProfile(ctx, profileID, true, 1<<30)
	return len(list), nil
}
