package service

import (
	"context"
	"fmt"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

type StatsService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

type statsService struct {
	stg storage.IStorage
	log logger.ILogger
}

func NewStatsService(stg storage.IStorage, log logger.ILogger) StatsService {
	return &statsService{stg: stg, log: log}
}

func (s *statsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var (
		st  models.DashboardStats
		err error
	)
	if st.ProfilesByRole, err = s.stg.Profile().CountByRole(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if st.PendingDrivers, err = s.stg.Profile().CountPendingDrivers(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if st.BlockedProfiles, err = s.stg.Profile().CountBlocked(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if st.OrdersByStatus, err = s.stg.Order().CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if st.OrdersToday, err = s.stg.Order().GetDailyOrderCount(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if st.CancelRate, err = s.stg.Order().GetGlobalCancelRate(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if st.PendingWithdrawals, err = s.stg.Withdrawal().CountPending(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &st, nil
}
