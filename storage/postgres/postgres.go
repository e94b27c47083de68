package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"entregas/config"
	"entregas/pkg/logger"
	"entregas/storage"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
	log  logger.ILogger

	profile      storage.IProfileStorage
	tariff       storage.ITariffStorage
	order        storage.IOrderStorage
	delivery     storage.IDeliveryStorage
	rating       storage.IRatingStorage
	withdrawal   storage.IWithdrawalStorage
	notification storage.INotificationStorage
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	url := cfg.PostgresURL()

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Error("error while parsing Postgres config", logger.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("failed to connect Postgres", logger.Error(err))
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		log.Error("postgres ping failed", logger.Error(err))
		pool.Close()
		return nil, err
	}

	if err := runMigrations(migrationsPath(cfg), url, log); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Postgres connected")

	return &Store{
		pool:         pool,
		log:          log,
		profile:      NewProfileRepo(pool, log),
		tariff:       NewTariffRepo(pool, log),
		order:        NewOrderRepo(pool, log),
		delivery:     NewDeliveryRepo(pool, log),
		rating:       NewRatingRepo(pool, log),
		withdrawal:   NewWithdrawalRepo(pool, log),
		notification: NewNotificationRepo(pool, log),
	}, nil
}

func migrationsPath(cfg config.Config) string {
	if cfg.MigrationsPath != "" {
		return cfg.MigrationsPath
	}
	cwd, _ := os.Getwd()
	mPath := filepath.Join(cwd, "migrations")
	if _, err := os.Stat(filepath.Join(mPath, "postgres")); err == nil {
		mPath = filepath.Join(mPath, "postgres")
	}
	return mPath
}

func runMigrations(path, url string, log logger.ILogger) error {
	m, err := migrate.New("file://"+path, url)
	if err != nil {
		log.Error("migration init error", logger.String("path", path), logger.Error(err))
		return err
	}
	defer m.Close()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		log.Error("migration up error", logger.Error(err))
		return err
	}
	log.Info("migrations applied", logger.String("path", path))
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Profile() storage.IProfileStorage           { return s.profile }
func (s *Store) Tariff() storage.ITariffStorage             { return s.tariff }
func (s *Store) Order() storage.IOrderStorage               { return s.order }
func (s *Store) Delivery() storage.IDeliveryStorage         { return s.delivery }
func (s *Store) Rating() storage.IRatingStorage             { return s.rating }
func (s *Store) Withdrawal() storage.IWithdrawalStorage     { return s.withdrawal }
func (s *Store) Notification() storage.INotificationStorage { return s.notification }

// mapWriteErr turns driver errors into storage sentinels.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrDuplicate
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
