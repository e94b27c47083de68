package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"entregas/pkg/logger"
	"entregas/pkg/metrics"
	"entregas/pkg/models"
	"entregas/pkg/money"
	"entregas/storage"
)

type DeliveryService interface {
	Accept(ctx context.Context, driver *models.Profile, orderID int64) (*models.Delivery, error)
	PickUp(ctx context.Context, driver *models.Profile, deliveryID int64) (*models.Delivery, error)
	Complete(ctx context.Context, driver *models.Profile, deliveryID int64, proofURL string) (*models.Delivery, error)
	ListForDriver(ctx context.Context, driverID int64) ([]*models.Delivery, error)
	// Active returns the driver's deliveries that are not yet delivered.
	Active(ctx context.Context, driverID int64) ([]*models.Delivery, error)
}

type deliveryService struct {
	stg      storage.IDeliveryStorage
	orders   storage.IOrderStorage
	tariffs  storage.ITariffStorage
	profiles ProfileService
	notify   NotificationService
	log      logger.ILogger
}

func NewDeliveryService(stg storage.IStorage, log logger.ILogger, profiles ProfileService, notify NotificationService) DeliveryService {
	return &deliveryService{
		stg:      stg.Delivery(),
		orders:   stg.Order(),
		tariffs:  stg.Tariff(),
		profiles: profiles,
		notify:   notify,
		log:      log,
	}
}

func (s *deliveryService) Accept(ctx context.Context, driver *models.Profile, orderID int64) (*models.Delivery, error) {
	if err := checkCanWork(driver); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, ErrConflict)
	}

	tariff, err := s.tariffs.GetByID(ctx, order.TariffID)
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	if tariff == nil {
		return nil, fmt.Errorf("tariff %d: %w", order.TariffID, ErrNotFound)
	}
	earning := money.Share(order.Price, tariff.DriverShare)

	d, err := s.orders.Accept(ctx, orderID, driver.ID, earning)
	if err != nil {
		return nil, mapStorageErr("accept", err)
	}
	s.log.Info("order accepted", logger.Int64("order_id", orderID), logger.Int64("driver_id", driver.ID), logger.Int64("earning", earning))

	notifyLogged(ctx, s.notify, s.log, order.ClientID, models.NotifyDelivery, messages["order_accepted_title"],
		fmt.Sprintf(messages["order_accepted_body"], driver.FullName, orderID))
	return d, nil
}

func (s *deliveryService) own(ctx context.Context, driver *models.Profile, deliveryID int64) (*models.Delivery, error) {
	if driver.Role != models.RoleDriver {
		return nil, ErrForbidden
	}
	if driver.Blocked {
		return nil, ErrBlocked
	}
	d, err := s.stg.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("delivery %d: %w", deliveryID, ErrNotFound)
	}
	if d.DriverID != driver.ID {
		return nil, fmt.Errorf("delivery %d: %w", deliveryID, ErrForbidden)
	}
	return d, nil
}

func (s *deliveryService) clientOf(ctx context.Context, orderID int64) int64 {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil || o == nil {
		s.log.Error("failed to load order for notification", logger.Int64("order_id", orderID), logger.Error(err))
		return 0
	}
	return o.ClientID
}

func (s *deliveryService) PickUp(ctx context.Context, driver *models.Profile, deliveryID int64) (*models.Delivery, error) {
	d, err := s.own(ctx, driver, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.Status != models.OrderAccepted {
		return nil, fmt.Errorf("delivery %d is %s: %w", deliveryID, d.Status, ErrConflict)
	}
	if err := s.stg.PickUp(ctx, deliveryID); err != nil {
		return nil, mapStorageErr("pick up", err)
	}

	if clientID := s.clientOf(ctx, d.OrderID); clientID != 0 {
		notifyLogged(ctx, s.notify, s.log, clientID, models.NotifyDelivery, messages["order_picked_title"],
			fmt.Sprintf(messages["order_picked_body"], d.OrderID))
	}
	return s.stg.GetByID(ctx, deliveryID)
}

func validProofURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

func (s *deliveryService) Complete(ctx context.Context, driver *models.Profile, deliveryID int64, proofURL string) (*models.Delivery, error) {
	proofURL = strings.TrimSpace(proofURL)
	if proofURL != "" && !validProofURL(proofURL) {
		return nil, invalid("proof_url", "must be an http(s) URL")
	}

	d, err := s.own(ctx, driver, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.Status != models.OrderPickedUp {
		return nil, fmt.Errorf("delivery %d is %s: %w", deliveryID, d.Status, ErrConflict)
	}
	if err := s.stg.Complete(ctx, deliveryID, proofURL); err != nil {
		return nil, mapStorageErr("complete", err)
	}
	metrics.DeliveryCompleted()
	s.log.Info("delivery completed", logger.Int64("delivery_id", deliveryID), logger.Int64("driver_id", driver.ID))

	if clientID := s.clientOf(ctx, d.OrderID); clientID != 0 {
		notifyLogged(ctx, s.notify, s.log, clientID, models.NotifyDelivery, messages["order_delivered_title"],
			fmt.Sprintf(messages["order_delivered_body"], d.OrderID))
	}
	notifyLogged(ctx, s.notify, s.log, driver.ID, models.NotifyDelivery, messages["earning_title"],
		fmt.Sprintf(messages["earning_body"], money.FormatBRL(d.DriverEarning), d.OrderID))

	if _, _, err := s.profiles.SyncRank(ctx, driver.ID); err != nil {
		s.log.Error("failed to sync rank", logger.Int64("driver_id", driver.ID), logger.Error(err))
	}
	return s.stg.GetByID(ctx, deliveryID)
}

func (s *deliveryService) ListForDriver(ctx context.Context, driverID int64) ([]*models.Delivery, error) {
	return s.stg.GetDriverDeliveries(ctx, driverID)
}

func (s *deliveryService) Active(ctx context.Context, driverID int64) ([]*models.Delivery, error) {
	all, err := s.stg.GetDriverDeliveries(ctx, driverID)
	if err != nil {
		return nil, err
	}
	var active []*models.Delivery
	for _, d := range all {
		if d.Status == models.OrderAccepted || d.Status == models.OrderPickedUp {
			active = append(active, d)
		}
	}
	return active, nil
}
