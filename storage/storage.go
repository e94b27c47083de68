package storage

import (
	"context"
	"errors"
	"time"

	"entregas/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned by writes that target a row that does not exist.
	// Lookups return (nil, nil) instead.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a guarded status transition affected no rows.
	ErrConflict = errors.New("status changed concurrently")
	// ErrDuplicate wraps unique constraint violations.
	ErrDuplicate = errors.New("record already exists")
	// ErrInsufficientFunds is returned when a withdrawal exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient balance")
)

type IStorage interface {
	Profile() IProfileStorage
	Tariff() ITariffStorage
	Order() IOrderStorage
	Delivery() IDeliveryStorage
	Rating() IRatingStorage
	Withdrawal() IWithdrawalStorage
	Notification() INotificationStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IProfileStorage interface {
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByTelegramChat(ctx context.Context, chatID int64) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error)
	UpdateContact(ctx context.Context, id int64, phone, cep string) error
	SetApproved(ctx context.Context, id int64) error
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	SetTelegramLinkCode(ctx context.Context, id int64, code string) error
	// LinkTelegram binds chatID to the profile holding code, releasing the chat
	// from any other profile it was bound to.
	LinkTelegram(ctx context.Context, code string, chatID int64) (*models.Profile, error)
	UpdateRankTier(ctx context.Context, id int64, tier string) error
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	UpsertVehicle(ctx context.Context, vehicle *models.DriverVehicle) error
	GetVehicle(ctx context.Context, profileID int64) (*models.DriverVehicle, error)
	CountByRole(ctx context.Context) (map[string]int, error)
	CountPendingDrivers(ctx context.Context) (int, error)
	CountBlocked(ctx context.Context) (int, error)
}

type ITariffStorage interface {
	GetAll(ctx context.Context, onlyActive bool) ([]*models.Tariff, error)
	GetByID(ctx context.Context, id int64) (*models.Tariff, error)
	Create(ctx context.Context, tariff *models.Tariff) (*models.Tariff, error)
	Update(ctx context.Context, tariff *models.Tariff) error
	Delete(ctx context.Context, id int64) error
}

type IOrderStorage interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetAll(ctx context.Context, status string) ([]*models.Order, error)
	GetClientOrders(ctx context.Context, clientID int64) ([]*models.Order, error)
	GetPendingOrders(ctx context.Context) ([]*models.Order, error)
	// Accept moves a pending order to accepted and creates its delivery in one transaction.
	Accept(ctx context.Context, orderID, driverID, driverEarning int64) (*models.Delivery, error)
	Cancel(ctx context.Context, orderID int64, from ...string) error
	CancelStale(ctx context.Context, createdBefore time.Time) ([]*models.Order, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	GetDailyOrderCount(ctx context.Context) (int, error)
	// GetGlobalCancelRate returns cancelled/total as a fraction, 0 when there are no orders.
	GetGlobalCancelRate(ctx context.Context) (float64, error)
}

type IDeliveryStorage interface {
	GetByID(ctx context.Context, id int64) (*models.Delivery, error)
	GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error)
	GetDriverDeliveries(ctx context.Context, driverID int64) ([]*models.Delivery, error)
	PickUp(ctx context.Context, id int64) error
	// Complete marks the delivery and its order delivered and bumps the driver's counter.
	Complete(ctx context.Context, id int64, proofURL string) error
	SumEarnings(ctx context.Context, driverID int64) (int64, error)
}

type IRatingStorage interface {
	// Create stores the rating and refreshes the driver's average in one transaction.
	Create(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	GetByOrderID(ctx context.Context, orderID int64) (*models.Rating, error)
	GetDriverRatings(ctx context.Context, driverID int64, limit int) ([]*models.Rating, error)
}

type IWithdrawalStorage interface {
	// Create inserts a pending request only if the driver's available balance covers it.
	Create(ctx context.Context, w *models.Withdrawal) (*models.Withdrawal, error)
	GetByID(ctx context.Context, id int64) (*models.Withdrawal, error)
	GetDriverWithdrawals(ctx context.Context, driverID int64) ([]*models.Withdrawal, error)
	GetByStatus(ctx context.Context, status string) ([]*models.Withdrawal, error)
	Review(ctx context.Context, id int64, from, to string, reviewerID int64, note string) error
	// Totals returns the amounts already paid out or approved, and those still pending.
	Totals(ctx context.Context, driverID int64) (withdrawn, pending int64, err error)
	CountPending(ctx context.Context) (int, error)
}

type INotificationStorage interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByProfile(ctx context.Context, profileID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, profileID, id int64) error
	MarkAllRead(ctx context.Context, profileID int64) (int64, error)
	UnreadCount(ctx context.Context, profileID int64) (int, error)
}
