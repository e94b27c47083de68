package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

const maxCommentLen = 500

type RatingService interface {
	Rate(ctx context.Context, client *models.Profile, orderID int64, stars int, comment string) (*models.Rating, error)
	ListForDriver(ctx context.Context, driverID int64, limit int) ([]*models.Rating, error)
}

type ratingService struct {
	stg        storage.IRatingStorage
	orders     storage.IOrderStorage
	deliveries storage.IDeliveryStorage
	profiles   ProfileService
	notify     NotificationService
	log        logger.ILogger
}

func NewRatingService(stg storage.IStorage, log logger.ILogger, profiles ProfileService, notify NotificationService) RatingService {
	return &ratingService{
		stg:        stg.Rating(),
		orders:     stg.Order(),
		deliveries: stg.Delivery(),
		profiles:   profiles,
		notify:     notify,
		log:        log,
	}
}

func (s *ratingService) Rate(ctx context.Context, client *models.Profile, orderID int64, stars int, comment string) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, invalid("stars", "must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxCommentLen {
		return nil, invalid("comment", fmt.Sprintf("must have at most %d characters", maxCommentLen))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if order.ClientID != client.ID {
		return nil, fmt.Errorf("rate order %d: %w", orderID, ErrForbidden)
	}
	if order.Status != models.OrderDelivered {
		return nil, fmt.Errorf("rate order %d in status %s: %w", orderID, order.Status, ErrConflict)
	}

	existing, err := s.stg.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("rating for order %d: %w", orderID, ErrAlreadyExists)
	}

	d, err := s.deliveries.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("delivery of order %d: %w", orderID, ErrNotFound)
	}

	r, err := s.stg.Create(ctx, &models.Rating{
		OrderID:  orderID,
		DriverID: d.DriverID,
		ClientID: client.ID,
		Stars:    stars,
		Comment:  comment,
	})
	if err != nil {
		return nil, mapStorageErr("rate", err)
	}
	s.log.Info("order rated", logger.Int64("order_id", orderID), logger.Int64("driver_id", d.DriverID), logger.Int("stars", stars))

	notifyLogged(ctx, s.notify, s.log, d.DriverID, models.NotifyDelivery, messages["rated_title"],
		fmt.Sprintf(messages["rated_body"], stars, orderID))
	if _, _, err := s.profiles.SyncRank(ctx, d.DriverID); err != nil {
		s.log.Error("failed to sync rank", logger.Int64("driver_id", d.DriverID), logger.Error(err))
	}
	return r, nil
}

func (s *ratingService) ListForDriver(ctx context.Context, driverID int64, limit int) ([]*models.Rating, error) {
	return s.stg.GetDriverRatings(ctx, driverID, clampLimit(limit, 20, 100))
}
