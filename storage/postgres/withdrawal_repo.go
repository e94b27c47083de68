package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

const withdrawalColumns = `id, driver_id, amount, pix_key_type, pix_key, status, reviewed_by, note, created_at, reviewed_at`

type withdrawalRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewWithdrawalRepo(db *pgxpool.Pool, log logger.ILogger) storage.IWithdrawalStorage {
	return &withdrawalRepo{db: db, log: log}
}

func scanWithdrawal(row pgx.Row) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := row.Scan(&w.ID, &w.DriverID, &w.Amount, &w.PixKeyType, &w.PixKey, &w.Status, &w.ReviewedBy, &w.Note, &w.CreatedAt, &w.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepo) Create(ctx context.Context, w *models.Withdrawal) (*models.Withdrawal, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// serialize concurrent requests of the same driver
		var id int64
		if err := tx.QueryRow(ctx, "SELECT id FROM profiles WHERE id = $1 FOR UPDATE", w.DriverID).Scan(&id); err != nil {
			if isNoRows(err) {
				return storage.ErrNotFound
			}
			return err
		}

		var available int64
		err := tx.QueryRow(ctx, `
			SELECT
				(SELECT COALESCE(SUM(driver_earning), 0) FROM deliveries WHERE driver_id = $1 AND status = 'delivered') -
				(SELECT COALESCE(SUM(amount), 0) FROM withdrawals WHERE driver_id = $1 AND status IN ('pending', 'approved', 'paid'))
		`, w.DriverID).Scan(&available)
		if err != nil {
			return err
		}
		if available < w.Amount {
			return storage.ErrInsufficientFunds
		}

		created, err := scanWithdrawal(tx.QueryRow(ctx, `
			INSERT INTO withdrawals (driver_id, amount, pix_key_type, pix_key, status)
			VALUES ($1, $2, $3, $4, 'pending')
			RETURNING `+withdrawalColumns,
			w.DriverID, w.Amount, w.PixKeyType, w.PixKey))
		if err != nil {
			return err
		}
		*w = *created
		return nil
	})
	if err != nil {
		if !errors.Is(err, storage.ErrInsufficientFunds) {
			r.log.Error("failed to create withdrawal", logger.Int64("driver_id", w.DriverID), logger.Error(err))
		}
		return nil, err
	}
	return w, nil
}

func (r *withdrawalRepo) GetByID(ctx context.Context, id int64) (*models.Withdrawal, error) {
	w, err := scanWithdrawal(r.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error("failed to get withdrawal", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *withdrawalRepo) GetDriverWithdrawals(ctx context.Context, driverID int64) ([]*models.Withdrawal, error) {
	return r.list(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE driver_id = $1 ORDER BY created_at DESC, id DESC`, driverID)
}

func (r *withdrawalRepo) GetByStatus(ctx context.Context, status string) ([]*models.Withdrawal, error) {
	return r.list(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = $1 ORDER BY created_at ASC, id ASC`, status)
}

func (r *withdrawalRepo) list(ctx context.Context, query string, arg interface{}) ([]*models.Withdrawal, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.log.Error("failed to list withdrawals", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*models.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *withdrawalRepo) Review(ctx context.Context, id int64, from, to string, reviewerID int64, note string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE withdrawals SET status = $1, reviewed_by = $2, note = $3, reviewed_at = NOW()
		WHERE id = $4 AND status = $5
	`, to, reviewerID, note, id, from)
	if err != nil {
		r.log.Error("failed to review withdrawal", logger.Int64("id", id), logger.Error(err))
		return err
	}
	if res.RowsAffected() == 0 {
		return storage.ErrConflict
	}
	return nil
}

func (r *withdrawalRepo) Totals(ctx context.Context, driverID int64) (withdrawn, pending int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status IN ('approved', 'paid')), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0)
		FROM withdrawals WHERE driver_id = $1
	`, driverID).Scan(&withdrawn, &pending)
	return withdrawn, pending, err
}

func (r *withdrawalRepo) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM withdrawals WHERE status = 'pending'").Scan(&count)
	return count, err
}
