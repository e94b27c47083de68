package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

const tariffColumns = `id, name, vehicle_type, base_fee, per_km_fee, driver_share, is_active, created_at`

type tariffRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewTariffRepo(db *pgxpool.Pool, log logger.ILogger) storage.ITariffStorage {
	return &tariffRepo{db: db, log: log}
}

func scanTariff(row pgx.Row) (*models.Tariff, error) {
	var t models.Tariff
	if err := row.Scan(&t.ID, &t.Name, &t.VehicleType, &t.BaseFee, &t.PerKmFee, &t.DriverShare, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tariffRepo) GetAll(ctx context.Context, onlyActive bool) ([]*models.Tariff, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariffs`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY base_fee ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list tariffs", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var tariffs []*models.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

func (r *tariffRepo) GetByID(ctx context.Context, id int64) (*models.Tariff, error) {
	t, err := scanTariff(r.db.QueryRow(ctx, `SELECT `+tariffColumns+` FROM tariffs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error("failed to get tariff", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *tariffRepo) Create(ctx context.Context, t *models.Tariff) (*models.Tariff, error) {
	query := `
		INSERT INTO tariffs (name, vehicle_type, base_fee, per_km_fee, driver_share, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + tariffColumns
	created, err := scanTariff(r.db.QueryRow(ctx, query, t.Name, t.VehicleType, t.BaseFee, t.PerKmFee, t.DriverShare, t.IsActive))
	if err != nil {
		r.log.Error("failed to create tariff", logger.String("name", t.Name), logger.Error(err))
		return nil, mapWriteErr(err)
	}
	return created, nil
}

func (r *tariffRepo) Update(ctx context.Context, t *models.Tariff) error {
	query := `
		UPDATE tariffs
		SET name=$1, vehicle_type=$2, base_fee=$3, per_km_fee=$4, driver_share=$5, is_active=$6
		WHERE id=$7
	`
	res, err := r.db.Exec(ctx, query, t.Name, t.VehicleType, t.BaseFee, t.PerKmFee, t.DriverShare, t.IsActive, t.ID)
	if err != nil {
		r.log.Error("failed to update tariff", logger.Int64("id", t.ID), logger.Error(err))
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete soft-deletes tariffs already referenced by orders.
func (r *tariffRepo) Delete(ctx context.Context, id int64) error {
	var used bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE tariff_id = $1)`, id).Scan(&used)
	if err != nil {
		return err
	}

	query := `DELETE FROM tariffs WHERE id = $1`
	if used {
		query = `UPDATE tariffs SET is_active = FALSE WHERE id = $1`
	}
	res, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("failed to delete tariff", logger.Int64("id", id), logger.Error(err))
		return err
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
