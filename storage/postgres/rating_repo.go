package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

type ratingRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRatingRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRatingStorage {
	return &ratingRepo{db: db, log: log}
}

func (r *ratingRepo) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO ratings (order_id, driver_id, client_id, stars, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, rating.OrderID, rating.DriverID, rating.ClientID, rating.Stars, rating.Comment).Scan(&rating.ID, &rating.CreatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE profiles p
			SET avg_rating = s.avg, rating_count = s.cnt, updated_at = NOW()
			FROM (SELECT AVG(stars)::float AS avg, count(*) AS cnt FROM ratings WHERE driver_id = $1) s
			WHERE p.id = $1
		`, rating.DriverID)
		return err
	})
	if err != nil {
		r.log.Error("failed to create rating", logger.Int64("order_id", rating.OrderID), logger.Error(err))
		return nil, mapWriteErr(err)
	}
	return rating, nil
}

func (r *ratingRepo) GetByOrderID(ctx context.Context, orderID int64) (*models.Rating, error) {
	var rt models.Rating
	err := r.db.QueryRow(ctx, `
		SELECT id, order_id, driver_id, client_id, stars, comment, created_at FROM ratings WHERE order_id = $1
	`, orderID).Scan(&rt.ID, &rt.OrderID, &rt.DriverID, &rt.ClientID, &rt.Stars, &rt.Comment, &rt.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

func (r *ratingRepo) GetDriverRatings(ctx context.Context, driverID int64, limit int) ([]*models.Rating, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, driver_id, client_id, stars, comment, created_at
		FROM ratings WHERE driver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.OrderID, &rt.DriverID, &rt.ClientID, &rt.Stars, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, &rt)
	}
	return ratings, rows.Err()
}
