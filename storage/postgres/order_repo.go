package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

const orderSelect = `
	SELECT o.id, o.client_id, o.tariff_id, o.pickup_address, o.pickup_cep, o.dropoff_address, o.dropoff_cep,
	       o.description, o.distance_km, o.price, o.status, o.created_at, o.updated_at, d.driver_id
	FROM orders o
	LEFT JOIN deliveries d ON d.order_id = o.id
`

type orderRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderStorage {
	return &orderRepo{db: db, log: log}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.ClientID, &o.TariffID, &o.PickupAddress, &o.PickupCEP, &o.DropoffAddress, &o.DropoffCEP,
		&o.Description, &o.DistanceKm, &o.Price, &o.Status, &o.CreatedAt, &o.UpdatedAt, &o.DriverID,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (client_id, tariff_id, pickup_address, pickup_cep, dropoff_address, dropoff_cep, description, distance_km, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		order.ClientID,
		order.TariffID,
		order.PickupAddress,
		order.PickupCEP,
		order.DropoffAddress,
		order.DropoffCEP,
		order.Description,
		order.DistanceKm,
		order.Price,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		r.log.Error("failed to create order", logger.Error(err))
		return nil, mapWriteErr(err)
	}

	return order, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error("failed to get order by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepo) GetAll(ctx context.Context, status string) ([]*models.Order, error) {
	if status != "" {
		return r.scanOrders(ctx, orderSelect+` WHERE o.status = $1 ORDER BY o.created_at DESC, o.id DESC`, status)
	}
	return r.scanOrders(ctx, orderSelect+` ORDER BY o.created_at DESC, o.id DESC`)
}

func (r *orderRepo) GetClientOrders(ctx context.Context, clientID int64) ([]*models.Order, error) {
	return r.scanOrders(ctx, orderSelect+` WHERE o.client_id = $1 ORDER BY o.created_at DESC, o.id DESC`, clientID)
}

func (r *orderRepo) GetPendingOrders(ctx context.Context) ([]*models.Order, error) {
	return r.scanOrders(ctx, orderSelect+` WHERE o.status = 'pending' ORDER BY o.created_at ASC, o.id ASC`)
}

func (r *orderRepo) scanOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to query orders", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) Accept(ctx context.Context, orderID, driverID, driverEarning int64) (*models.Delivery, error) {
	d := &models.Delivery{OrderID: orderID, DriverID: driverID, DriverEarning: driverEarning, Status: models.OrderAccepted}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, "UPDATE orders SET status = 'accepted', updated_at = NOW() WHERE id = $1 AND status = 'pending'", orderID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return storage.ErrConflict
		}
		return tx.QueryRow(ctx, `
			INSERT INTO deliveries (order_id, driver_id, driver_earning, status)
			VALUES ($1, $2, $3, 'accepted')
			RETURNING id, accepted_at
		`, orderID, driverID, driverEarning).Scan(&d.ID, &d.AcceptedAt)
	})
	if err != nil {
		if !errors.Is(err, storage.ErrConflict) {
			r.log.Error("failed to accept order", logger.Int64("order_id", orderID), logger.Int64("driver_id", driverID), logger.Error(err))
		}
		return nil, mapWriteErr(err)
	}
	return d, nil
}

func (r *orderRepo) Cancel(ctx context.Context, orderID int64, from ...string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, "UPDATE orders SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status = ANY($2)", orderID, from)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return storage.ErrConflict
		}
		_, err = tx.Exec(ctx, "UPDATE deliveries SET status = 'cancelled' WHERE order_id = $1", orderID)
		return err
	})
}

func (r *orderRepo) CancelStale(ctx context.Context, createdBefore time.Time) ([]*models.Order, error) {
	query := `
		UPDATE orders SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1
		RETURNING id, client_id, tariff_id, pickup_address, pickup_cep, dropoff_address, dropoff_cep,
		          description, distance_km, price, status, created_at, updated_at, NULL::BIGINT
	`
	return r.scanOrders(ctx, query, createdBefore)
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, "SELECT status, count(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *orderRepo) GetDailyOrderCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM orders WHERE created_at >= date_trunc('day', NOW())").Scan(&count)
	return count, err
}

func (r *orderRepo) GetGlobalCancelRate(ctx context.Context) (float64, error) {
	var rate float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(count(*) FILTER (WHERE status = 'cancelled')::float / NULLIF(count(*), 0), 0)
		FROM orders
	`).Scan(&rate)
	return rate, err
}
