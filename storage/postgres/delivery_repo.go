package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

const deliveryColumns = `id, order_id, driver_id, driver_earning, status, proof_url, accepted_at, picked_up_at, delivered_at`

type deliveryRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDeliveryRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDeliveryStorage {
	return &deliveryRepo{db: db, log: log}
}

func scanDelivery(row pgx.Row) (*models.Delivery, error) {
	var d models.Delivery
	err := row.Scan(&d.ID, &d.OrderID, &d.DriverID, &d.DriverEarning, &d.Status, &d.ProofURL, &d.AcceptedAt, &d.PickedUpAt, &d.DeliveredAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepo) getOne(ctx context.Context, where string, arg int64) (*models.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error("failed to get delivery", logger.String("where", where), logger.Int64("arg", arg), logger.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *deliveryRepo) GetByID(ctx context.Context, id int64) (*models.Delivery, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *deliveryRepo) GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error) {
	return r.getOne(ctx, "order_id = $1", orderID)
}

func (r *deliveryRepo) GetDriverDeliveries(ctx context.Context, driverID int64) ([]*models.Delivery, error) {
	rows, err := r.db.Query(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE driver_id = $1 ORDER BY accepted_at DESC, id DESC`, driverID)
	if err != nil {
		r.log.Error("failed to list driver deliveries", logger.Int64("driver_id", driverID), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *deliveryRepo) PickUp(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var orderID int64
		err := tx.QueryRow(ctx, `
			UPDATE deliveries SET status = 'picked_up', picked_up_at = NOW()
			WHERE id = $1 AND status = 'accepted'
			RETURNING order_id
		`, id).Scan(&orderID)
		if isNoRows(err) {
			return storage.ErrConflict
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "UPDATE orders SET status = 'picked_up', updated_at = NOW() WHERE id = $1 AND status = 'accepted'", orderID)
		return err
	})
}

func (r *deliveryRepo) Complete(ctx context.Context, id int64, proofURL string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var orderID, driverID int64
		err := tx.QueryRow(ctx, `
			UPDATE deliveries SET status = 'delivered', delivered_at = NOW(), proof_url = $2
			WHERE id = $1 AND status = 'picked_up'
			RETURNING order_id, driver_id
		`, id, proofURL).Scan(&orderID, &driverID)
		if isNoRows(err) {
			return storage.ErrConflict
		}
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, "UPDATE orders SET status = 'delivered', updated_at = NOW() WHERE id = $1", orderID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "UPDATE profiles SET completed_deliveries = completed_deliveries + 1, updated_at = NOW() WHERE id = $1", driverID)
		return err
	})
}

func (r *deliveryRepo) SumEarnings(ctx context.Context, driverID int64) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(driver_earning), 0) FROM deliveries WHERE driver_id = $1 AND status = 'delivered'
	`, driverID).Scan(&total)
	return total, err
}
