package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

const profileColumns = `id, email, password_hash, full_name, role, document, phone, cep, approved, blocked,
	telegram_chat_id, telegram_link_code, avg_rating, rating_count, completed_deliveries, rank_tier, created_at, updated_at`

type profileRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewProfileRepo(db *pgxpool.Pool, log logger.ILogger) storage.IProfileStorage {
	return &profileRepo{db: db, log: log}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role, &p.Document, &p.Phone, &p.CEP, &p.Approved, &p.Blocked,
		&p.TelegramChatID, &p.TelegramLinkCode, &p.AvgRating, &p.RatingCount, &p.CompletedDeliveries, &p.RankTier, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (email, password_hash, full_name, role, document, phone, cep, approved, blocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + profileColumns
	created, err := scanProfile(r.db.QueryRow(ctx, query,
		p.Email, p.PasswordHash, p.FullName, p.Role, p.Document, p.Phone, p.CEP, p.Approved, p.Blocked,
	))
	if err != nil {
		r.log.Error("failed to create profile", logger.String("email", p.Email), logger.Error(err))
		return nil, mapWriteErr(err)
	}
	return created, nil
}

func (r *profileRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE ` + where
	p, err := scanProfile(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error("failed to get profile", logger.String("where", where), logger.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *profileRepo) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, "email = $1", strings.ToLower(email))
}

func (r *profileRepo) GetByTelegramChat(ctx context.Context, chatID int64) (*models.Profile, error) {
	return r.getOne(ctx, "telegram_chat_id = $1", chatID)
}

func (r *profileRepo) List(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		conds = append(conds, "role = $1")
	}
	if filter.OnlyPending {
		conds = append(conds, "role = 'driver' AND NOT approved AND NOT blocked")
	}
	if filter.OnlyBlocked {
		conds = append(conds, "blocked")
	}

	query := `SELECT ` + profileColumns + ` FROM profiles`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list profiles", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *profileRepo) UpdateContact(ctx context.Context, id int64, phone, cep string) error {
	return r.exec(ctx, "UPDATE profiles SET phone=$1, cep=$2, updated_at=NOW() WHERE id=$3", phone, cep, id)
}

// SetApproved approves a driver and lifts any block in the same statement.
func (r *profileRepo) SetApproved(ctx context.Context, id int64) error {
	return r.exec(ctx, "UPDATE profiles SET approved=TRUE, blocked=FALSE, updated_at=NOW() WHERE id=$1", id)
}

// SetBlocked revokes approval when blocking; unblocking leaves approval off.
func (r *profileRepo) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	if blocked {
		return r.exec(ctx, "UPDATE profiles SET blocked=TRUE, approved=FALSE, updated_at=NOW() WHERE id=$1", id)
	}
	return r.exec(ctx, "UPDATE profiles SET blocked=FALSE, updated_at=NOW() WHERE id=$1", id)
}

func (r *profileRepo) SetTelegramLinkCode(ctx context.Context, id int64, code string) error {
	return r.exec(ctx, "UPDATE profiles SET telegram_link_code=$1, updated_at=NOW() WHERE id=$2", code, id)
}

// LinkTelegram binds chatID to the profile holding code. A chat already bound
// to another profile is released in the same transaction.
func (r *profileRepo) LinkTelegram(ctx context.Context, code string, chatID int64) (*models.Profile, error) {
	var p *models.Profile
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE profiles SET telegram_chat_id=NULL, updated_at=NOW()
			WHERE telegram_chat_id=$1 AND telegram_link_code <> $2
		`, chatID, code)
		if err != nil {
			return err
		}
		query := `
			UPDATE profiles SET telegram_chat_id=$1, telegram_link_code='', updated_at=NOW()
			WHERE telegram_link_code=$2 AND telegram_link_code <> ''
			RETURNING ` + profileColumns
		p, err = scanProfile(tx.QueryRow(ctx, query, chatID, code))
		if isNoRows(err) {
			return storage.ErrNotFound
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Error("failed to link telegram chat", logger.Int64("chat_id", chatID), logger.Error(err))
		}
		return nil, mapWriteErr(err)
	}
	return p, nil
}

func (r *profileRepo) UpdateRankTier(ctx context.Context, id int64, tier string) error {
	return r.exec(ctx, "UPDATE profiles SET rank_tier=$1, updated_at=NOW() WHERE id=$2", tier, id)
}

func (r *profileRepo) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT id, full_name, completed_deliveries, avg_rating, rank_tier
		FROM profiles
		WHERE role = 'driver' AND NOT blocked
		ORDER BY completed_deliveries DESC, avg_rating DESC, id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("failed to load leaderboard", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ProfileID, &e.FullName, &e.CompletedDeliveries, &e.AvgRating, &e.RankTier); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *profileRepo) UpsertVehicle(ctx context.Context, v *models.DriverVehicle) error {
	query := `
		INSERT INTO driver_vehicles (profile_id, vehicle_type, plate, model)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id) DO UPDATE
		SET vehicle_type = EXCLUDED.vehicle_type,
			plate = EXCLUDED.plate,
			model = EXCLUDED.model,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, v.ProfileID, v.VehicleType, v.Plate, v.Model)
	if err != nil {
		r.log.Error("failed to upsert driver vehicle", logger.Int64("profile_id", v.ProfileID), logger.Error(err))
		return mapWriteErr(err)
	}
	return nil
}

func (r *profileRepo) GetVehicle(ctx context.Context, profileID int64) (*models.DriverVehicle, error) {
	var v models.DriverVehicle
	query := `SELECT profile_id, vehicle_type, plate, model, updated_at FROM driver_vehicles WHERE profile_id = $1`
	err := r.db.QueryRow(ctx, query, profileID).Scan(&v.ProfileID, &v.VehicleType, &v.Plate, &v.Model, &v.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error("failed to get driver vehicle", logger.Error(err))
		return nil, err
	}
	return &v, nil
}

func (r *profileRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, "SELECT role, count(*) FROM profiles GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			role  string
			count int
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

func (r *profileRepo) CountPendingDrivers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM profiles WHERE role = 'driver' AND NOT approved AND NOT blocked").Scan(&count)
	return count, err
}

func (r *profileRepo) CountBlocked(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM profiles WHERE blocked").Scan(&count)
	return count, err
}
