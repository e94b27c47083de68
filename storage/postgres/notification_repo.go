package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

type notificationRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewNotificationRepo(db *pgxpool.Pool, log logger.ILogger) storage.INotificationStorage {
	return &notificationRepo{db: db, log: log}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (profile_id, kind, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, n.ProfileID, n.Kind, n.Title, n.Body).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		r.log.Error("failed to create notification", logger.Int64("profile_id", n.ProfileID), logger.Error(err))
		return nil, err
	}
	return n, nil
}

func (r *notificationRepo) GetByProfile(ctx context.Context, profileID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := `SELECT id, profile_id, kind, title, body, read_at, created_at FROM notifications WHERE profile_id = $1`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, profileID, limit)
	if err != nil {
		r.log.Error("failed to list notifications", logger.Int64("profile_id", profileID), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *notificationRepo) MarkRead(ctx context.Context, profileID, id int64) error {
	res, err := r.db.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW()) WHERE id = $1 AND profile_id = $2
	`, id, profileID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, profileID int64) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE notifications SET read_at = NOW() WHERE profile_id = $1 AND read_at IS NULL`, profileID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *notificationRepo) UnreadCount(ctx context.Context, profileID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE profile_id = $1 AND read_at IS NULL`, profileID).Scan(&count)
	return count, err
}
