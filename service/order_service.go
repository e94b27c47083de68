package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entregas/pkg/logger"
	"entregas/pkg/metrics"
	"entregas/pkg/models"
	"entregas/pkg/money"
	"entregas/pkg/validator"
	"entregas/storage"
)

type CreateOrderInput struct {
	TariffID       int64   `json:"tariff_id"`
	PickupAddress  string  `json:"pickup_address"`
	PickupCEP      string  `json:"pickup_cep"`
	DropoffAddress string  `json:"dropoff_address"`
	DropoffCEP     string  `json:"dropoff_cep"`
	Description    string  `json:"description"`
	DistanceKm     float64 `json:"distance_km"`
}

type OrderService interface {
	Create(ctx context.Context, client *models.Profile, in CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, viewer *models.Profile, id int64) (*models.Order, error)
	ListForClient(ctx context.Context, clientID int64) ([]*models.Order, error)
	ListAvailable(ctx context.Context, driver *models.Profile) ([]*models.Order, error)
	ListAll(ctx context.Context, status string) ([]*models.Order, error)
	Cancel(ctx context.Context, actor *models.Profile, id int64) error
	// ExpireStale cancels orders still pending after ttl and returns how many were cancelled.
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

type orderService struct {
	stg     storage.IOrderStorage
	tariffs TariffService
	notify  NotificationService
	log     logger.ILogger
	now     func() time.Time
}

func NewOrderService(stg storage.IStorage, log logger.ILogger, tariffs TariffService, notify NotificationService, now func() time.Time) OrderService {
	return &orderService{
		stg:     stg.Order(),
		tariffs: tariffs,
		notify:  notify,
		log:     log,
		now:     now,
	}
}

func (s *orderService) Create(ctx context.Context, client *models.Profile, in CreateOrderInput) (*models.Order, error) {
	if client.Role != models.RoleClient && client.Role != models.RoleWholesale {
		return nil, fmt.Errorf("create order: %w", ErrForbidden)
	}

	order := &models.Order{
		ClientID:       client.ID,
		TariffID:       in.TariffID,
		PickupAddress:  strings.TrimSpace(in.PickupAddress),
		DropoffAddress: strings.TrimSpace(in.DropoffAddress),
		Description:    strings.TrimSpace(in.Description),
		DistanceKm:     in.DistanceKm,
		Status:         models.OrderPending,
	}
	if order.PickupAddress == "" {
		return nil, invalid("pickup_address", "required")
	}
	if order.DropoffAddress == "" {
		return nil, invalid("dropoff_address", "required")
	}
	if !validator.ValidCEP(in.PickupCEP) {
		return nil, invalid("pickup_cep", "invalid CEP")
	}
	if !validator.ValidCEP(in.DropoffCEP) {
		return nil, invalid("dropoff_cep", "invalid CEP")
	}
	order.PickupCEP = validator.FormatCEP(in.PickupCEP)
	order.DropoffCEP = validator.FormatCEP(in.DropoffCEP)

	price, err := s.tariffs.Quote(ctx, in.TariffID, in.DistanceKm)
	if err != nil {
		return nil, err
	}
	order.Price = price

	created, err := s.stg.Create(ctx, order)
	if err != nil {
		return nil, mapStorageErr("create order", err)
	}
	metrics.OrderCreated(client.Role)
	s.log.Info("order created", logger.Int64("order_id", created.ID), logger.Int64("client_id", client.ID), logger.Int64("price", created.Price))

	notifyLogged(ctx, s.notify, s.log, client.ID, models.NotifyOrder, messages["order_created_title"],
		fmt.Sprintf(messages["order_created_body"], created.ID, money.FormatBRL(created.Price)))
	return created, nil
}

func (s *orderService) load(ctx context.Context, id int64) (*models.Order, error) {
	o, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return o, nil
}

func canView(viewer *models.Profile, o *models.Order) bool {
	switch {
	case viewer.Role == models.RoleAdmin:
		return true
	case o.ClientID == viewer.ID:
		return true
	case o.DriverID != nil && *o.DriverID == viewer.ID:
		return true
	case o.Status == models.OrderPending && viewer.CanWork():
		return true
	}
	return false
}

func (s *orderService) Get(ctx context.Context, viewer *models.Profile, id int64) (*models.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, o) {
		return nil, fmt.Errorf("order %d: %w", id, ErrForbidden)
	}
	return o, nil
}

func (s *orderService) ListForClient(ctx context.Context, clientID int64) ([]*models.Order, error) {
	return s.stg.GetClientOrders(ctx, clientID)
}

func (s *orderService) ListAvailable(ctx context.Context, driver *models.Profile) ([]*models.Order, error) {
	if err := checkCanWork(driver); err != nil {
		return nil, err
	}
	return s.stg.GetPendingOrders(ctx)
}

func (s *orderService) ListAll(ctx context.Context, status string) ([]*models.Order, error) {
	switch status {
	case "", models.OrderPending, models.OrderAccepted, models.OrderPickedUp, models.OrderDelivered, models.OrderCancelled:
	default:
		return nil, invalid("status", "unknown order status")
	}
	return s.stg.GetAll(ctx, status)
}

func (s *orderService) Cancel(ctx context.Context, actor *models.Profile, id int64) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	var from []string
	by := "client"
	switch {
	case actor.Role == models.RoleAdmin:
		from = []string{models.OrderPending, models.OrderAccepted, models.OrderPickedUp}
		by = "admin"
	case o.ClientID == actor.ID:
		from = []string{models.OrderPending, models.OrderAccepted}
	default:
		return fmt.Errorf("cancel order %d: %w", id, ErrForbidden)
	}
	if o.IsFinal() {
		return fmt.Errorf("cancel order %d in status %s: %w", id, o.Status, ErrConflict)
	}

	if err := s.stg.Cancel(ctx, id, from...); err != nil {
		return mapStorageErr("cancel order", err)
	}
	metrics.OrderCancelled(by)
	s.log.Info("order cancelled", logger.Int64("order_id", id), logger.String("by", by))

	body := fmt.Sprintf(messages["order_cancelled_body"], id)
	if by == "admin" {
		notifyLogged(ctx, s.notify, s.log, o.ClientID, models.NotifyOrder, messages["order_cancelled_title"], body)
	}
	if o.DriverID != nil {
		notifyLogged(ctx, s.notify, s.log, *o.DriverID, models.NotifyOrder, messages["order_cancelled_title"], body)
	}
	return nil
}

func (s *orderService) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	orders, err := s.stg.CancelStale(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("expire orders: %w", err)
	}
	for _, o := range orders {
		metrics.OrderCancelled("expired")
		notifyLogged(ctx, s.notify, s.log, o.ClientID, models.NotifyOrder, messages["order_cancelled_title"],
			fmt.Sprintf(messages["order_expired_body"], o.ID))
	}
	return len(orders), nil
}

func checkCanWork(p *models.Profile) error {
	switch {
	case p.Role != models.RoleDriver:
		return ErrForbidden
	case p.Blocked:
		return ErrBlocked
	case !p.Approved:
		return ErrDriverNotApproved
	}
	return nil
}
