package service

import (
	"time"

	"entregas/pkg/auth"
	"entregas/pkg/logger"
	"entregas/pkg/realtime"
	"entregas/storage"
)

type IServiceManager interface {
	Auth() AuthService
	Profile() ProfileService
	Tariff() TariffService
	Order() OrderService
	Delivery() DeliveryService
	Rating() RatingService
	Withdrawal() WithdrawalService
	Notification() NotificationService
	Stats() StatsService
}

type Options struct {
	Tokens        *auth.TokenManager
	Bus           realtime.Bus
	AdminEmails   []string
	MinWithdrawal int64
	Now           func() time.Time
}

type service struct {
	authService         AuthService
	profileService      ProfileService
	tariffService       TariffService
	orderService        OrderService
	deliveryService     DeliveryService
	ratingService       RatingService
	withdrawalService   WithdrawalService
	notificationService NotificationService
	statsService        StatsService
}

func New(stg storage.IStorage, log logger.ILogger, opts Options) IServiceManager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Bus == nil {
		opts.Bus = realtime.NewLocalBus()
	}

	notifications := NewNotificationService(stg, log, opts.Bus)
	profiles := NewProfileService(stg, log, notifications)
	tariffs := NewTariffService(stg, log)

	return &service{
		authService:         NewAuthService(stg, log, opts.Tokens, opts.AdminEmails, notifications),
		profileService:      profiles,
		tariffService:       tariffs,
		orderService:        NewOrderService(stg, log, tariffs, notifications, opts.Now),
		deliveryService:     NewDeliveryService(stg, log, profiles, notifications),
		ratingService:       NewRatingService(stg, log, profiles, notifications),
		withdrawalService:   NewWithdrawalService(stg, log, opts.MinWithdrawal, notifications),
		notificationService: notifications,
		statsService:        NewStatsService(stg, log),
	}
}

func (s *service) Auth() AuthService {
	return s.authService
}

func (s *service) Profile() ProfileService {
	return s.profileService
}

func (s *service) Tariff() TariffService {
	return s.tariffService
}

func (s *service) Order() OrderService {
	return s.orderService
}

func (s *service) Delivery() DeliveryService {
	return s.deliveryService
}

func (s *service) Rating() RatingService {
	return s.ratingService
}

func (s *service) Withdrawal() WithdrawalService {
	return s.withdrawalService
}

func (s *service) Notification() NotificationService {
	return s.notificationService
}

func (s *service) Stats() StatsService {
	return s.statsService
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
