package service

import (
	"context"
	"fmt"
	"strings"

	"entregas/pkg/logger"
	"entregas/pkg/metrics"
	"entregas/pkg/models"
	"entregas/pkg/money"
	"entregas/pkg/validator"
	"entregas/storage"
)

// DefaultMinWithdrawal is R$ 20,00.
const DefaultMinWithdrawal int64 = 2000

type WithdrawalService interface {
	Balance(ctx context.Context, driverID int64) (*models.DriverBalance, error)
	Request(ctx context.Context, driver *models.Profile, amount int64, pixKind, pixKey string) (*models.Withdrawal, error)
	ListForDriver(ctx context.Context, driverID int64) ([]*models.Withdrawal, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Withdrawal, error)
	Approve(ctx context.Context, admin *models.Profile, id int64) (*models.Withdrawal, error)
	Reject(ctx context.Context, admin *models.Profile, id int64, note string) (*models.Withdrawal, error)
	MarkPaid(ctx context.Context, admin *models.Profile, id int64) (*models.Withdrawal, error)
}

type withdrawalService struct {
	stg        storage.IWithdrawalStorage
	deliveries storage.IDeliveryStorage
	notify     NotificationService
	log        logger.ILogger
	minAmount  int64
}

func NewWithdrawalService(stg storage.IStorage, log logger.ILogger, minAmount int64, notify NotificationService) WithdrawalService {
	if minAmount <= 0 {
		minAmount = DefaultMinWithdrawal
	}
	return &withdrawalService{
		stg:        stg.Withdrawal(),
		deliveries: stg.Delivery(),
		notify:     notify,
		log:        log,
		minAmount:  minAmount,
	}
}

func (s *withdrawalService) Balance(ctx context.Context, driverID int64) (*models.DriverBalance, error) {
	earned, err := s.deliveries.SumEarnings(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	withdrawn, pending, err := s.stg.Totals(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	return &models.DriverBalance{
		Earned:    earned,
		Withdrawn: withdrawn,
		Pending:   pending,
		Available: earned - withdrawn - pending,
	}, nil
}

func (s *withdrawalService) Request(ctx context.Context, driver *models.Profile, amount int64, pixKind, pixKey string) (*models.Withdrawal, error) {
	if driver.Role != models.RoleDriver {
		return nil, ErrForbidden
	}
	if driver.Blocked {
		return nil, ErrBlocked
	}
	if amount < s.minAmount {
		return nil, invalid("amount", "minimum is "+money.FormatBRL(s.minAmount))
	}
	kind := validator.PixKeyKind(strings.ToLower(strings.TrimSpace(pixKind)))
	pixKey = strings.TrimSpace(pixKey)
	if !validator.ValidPixKey(kind, pixKey) {
		return nil, invalid("pix_key", "invalid PIX key for type "+string(kind))
	}

	bal, err := s.Balance(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if amount > bal.Available {
		return nil, fmt.Errorf("withdraw %s of %s: %w", money.FormatBRL(amount), money.FormatBRL(bal.Available), ErrInsufficientBalance)
	}

	// storage re-checks the balance under a row lock
	w, err := s.stg.Create(ctx, &models.Withdrawal{
		DriverID:   driver.ID,
		Amount:     amount,
		PixKeyType: string(kind),
		PixKey:     pixKey,
	})
	if err != nil {
		return nil, mapStorageErr("request withdrawal", err)
	}
	metrics.WithdrawalRequested(amount)
	s.log.Info("withdrawal requested", logger.Int64("withdrawal_id", w.ID), logger.Int64("driver_id", driver.ID), logger.Int64("amount", amount))

	if err := s.notify.NotifyAdmins(ctx, models.NotifyWithdrawal, messages["withdrawal_new_title"],
		fmt.Sprintf(messages["withdrawal_new_body"], w.ID, money.FormatBRL(amount))); err != nil {
		s.log.Error("failed to notify admins", logger.Error(err))
	}
	return w, nil
}

func (s *withdrawalService) ListForDriver(ctx context.Context, driverID int64) ([]*models.Withdrawal, error) {
	return s.stg.GetDriverWithdrawals(ctx, driverID)
}

func (s *withdrawalService) ListByStatus(ctx context.Context, status string) ([]*models.Withdrawal, error) {
	if status == "" {
		status = models.WithdrawalPending
	}
	switch status {
	case models.WithdrawalPending, models.WithdrawalApproved, models.WithdrawalRejected, models.WithdrawalPaid:
	default:
		return nil, invalid("status", "unknown withdrawal status")
	}
	return s.stg.GetByStatus(ctx, status)
}

func (s *withdrawalService) Approve(ctx context.Context, admin *models.Profile, id int64) (*models.Withdrawal, error) {
	return s.review(ctx, admin, id, models.WithdrawalPending, models.WithdrawalApproved, "")
}

func (s *withdrawalService) Reject(ctx context.Context, admin *models.Profile, id int64, note string) (*models.Withdrawal, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, invalid("note", "a reason is required")
	}
	return s.review(ctx, admin, id, models.WithdrawalPending, models.WithdrawalRejected, note)
}

func (s *withdrawalService) MarkPaid(ctx context.Context, admin *models.Profile, id int64) (*models.Withdrawal, error) {
	return s.review(ctx, admin, id, models.WithdrawalApproved, models.WithdrawalPaid, "")
}

func (s *withdrawalService) review(ctx context.Context, admin *models.Profile, id int64, from, to, note string) (*models.Withdrawal, error) {
	if admin.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	w, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}
	if w == nil {
		return nil, fmt.Errorf("withdrawal %d: %w", id, ErrNotFound)
	}
	if w.Status != from {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", id, w.Status, ErrConflict)
	}
	if note == "" {
		note = w.Note
	}
	if err := s.stg.Review(ctx, id, from, to, admin.ID, note); err != nil {
		return nil, mapStorageErr("review", err)
	}
	s.log.Info("withdrawal reviewed", logger.Int64("withdrawal_id", id), logger.String("status", to), logger.Int64("admin_id", admin.ID))

	amount := money.FormatBRL(w.Amount)
	var title, body string
	switch to {
	case models.WithdrawalApproved:
		title, body = messages["withdrawal_ok_title"], fmt.Sprintf(messages["withdrawal_ok_body"], id, amount)
	case models.WithdrawalRejected:
		title, body = messages["withdrawal_no_title"], fmt.Sprintf(messages["withdrawal_no_body"], id, amount, note)
	case models.WithdrawalPaid:
		title, body = messages["withdrawal_paid_title"], fmt.Sprintf(messages["withdrawal_paid_body"], id, amount)
	}
	notifyLogged(ctx, s.notify, s.log, w.DriverID, models.NotifyWithdrawal, title, body)

	return s.stg.GetByID(ctx, id)
}
