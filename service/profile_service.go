package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/pkg/ranking"
	"entregas/pkg/validator"
	"entregas/storage"
)

type ProfileService interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	GetByTelegramChat(ctx context.Context, chatID int64) (*models.Profile, error)
	UpdateContact(ctx context.Context, id int64, phone, cep string) (*models.Profile, error)
	// TelegramLinkCode issues a one-time code the profile sends to the bot as /start <code>.
	TelegramLinkCode(ctx context.Context, id int64) (string, error)
	LinkTelegram(ctx context.Context, code string, chatID int64) (*models.Profile, error)
	SetVehicle(ctx context.Context, driverID int64, v *models.DriverVehicle) (*models.DriverVehicle, error)
	GetVehicle(ctx context.Context, driverID int64) (*models.DriverVehicle, error)

	List(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error)
	Approve(ctx context.Context, driverID int64) error
	Block(ctx context.Context, id int64) error
	Unblock(ctx context.Context, id int64) error

	Standing(ctx context.Context, driverID int64) (ranking.Standing, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	// SyncRank stores the driver's current tier and reports whether it changed.
	SyncRank(ctx context.Context, driverID int64) (ranking.Tier, bool, error)
}

type profileService struct {
	stg    storage.IProfileStorage
	log    logger.ILogger
	notify NotificationService
}

func NewProfileService(stg storage.IStorage, log logger.ILogger, notify NotificationService) ProfileService {
	return &profileService{
		stg:    stg.Profile(),
		log:    log,
		notify: notify,
	}
}

func (s *profileService) Get(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *profileService) GetByTelegramChat(ctx context.Context, chatID int64) (*models.Profile, error) {
	p, err := s.stg.GetByTelegramChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get profile by chat: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("chat %d: %w", chatID, ErrNotFound)
	}
	return p, nil
}

func (s *profileService) UpdateContact(ctx context.Context, id int64, phone, cep string) (*models.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if phone != "" {
		if !validator.ValidPhone(phone) {
			return nil, invalid("phone", "invalid phone number")
		}
		p.Phone = validator.FormatPhone(phone)
	}
	if cep != "" {
		if !validator.ValidCEP(cep) {
			return nil, invalid("cep", "invalid CEP")
		}
		p.CEP = validator.FormatCEP(cep)
	}
	if err := s.stg.UpdateContact(ctx, id, p.Phone, p.CEP); err != nil {
		return nil, mapStorageErr("update contact", err)
	}
	return p, nil
}

func (s *profileService) TelegramLinkCode(ctx context.Context, id int64) (string, error) {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if err := s.stg.SetTelegramLinkCode(ctx, id, code); err != nil {
		return "", mapStorageErr("link code", err)
	}
	return code, nil
}

func (s *profileService) LinkTelegram(ctx context.Context, code string, chatID int64) (*models.Profile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("code", "required")
	}
	p, err := s.stg.LinkTelegram(ctx, code, chatID)
	if err != nil {
		return nil, mapStorageErr("link telegram", err)
	}
	if p == nil {
		return nil, fmt.Errorf("link code: %w", ErrNotFound)
	}
	s.log.Info("telegram linked", logger.Int64("profile_id", p.ID), logger.Int64("chat_id", chatID))
	return p, nil
}

func (s *profileService) SetVehicle(ctx context.Context, driverID int64, v *models.DriverVehicle) (*models.DriverVehicle, error) {
	p, err := s.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !p.IsDriver() {
		return nil, ErrForbidden
	}
	switch v.VehicleType {
	case models.VehicleMoto, models.VehicleCarro, models.VehicleVan:
	default:
		return nil, invalid("vehicle_type", "must be moto, carro or van")
	}
	if !validator.ValidPlate(v.Plate) {
		return nil, invalid("plate", "invalid plate")
	}
	v.ProfileID = driverID
	v.Plate = validator.FormatPlate(v.Plate)
	v.Model = strings.TrimSpace(v.Model)

	if err := s.stg.UpsertVehicle(ctx, v); err != nil {
		return nil, mapStorageErr("set vehicle", err)
	}
	return v, nil
}

func (s *profileService) GetVehicle(ctx context.Context, driverID int64) (*models.DriverVehicle, error) {
	v, err := s.stg.GetVehicle(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("vehicle of %d: %w", driverID, ErrNotFound)
	}
	return v, nil
}

func (s *profileService) List(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error) {
	return s.stg.List(ctx, filter)
}

func (s *profileService) Approve(ctx context.Context, driverID int64) error {
	p, err := s.Get(ctx, driverID)
	if err != nil {
		return err
	}
	if !p.IsDriver() {
		return invalid("id", "only drivers need approval")
	}
	if err := s.stg.SetApproved(ctx, driverID); err != nil {
		return mapStorageErr("approve", err)
	}
	s.log.Info("driver approved", logger.Int64("driver_id", driverID))
	notifyLogged(ctx, s.notify, s.log, driverID, models.NotifyAccount, messages["approved_title"], messages["approved_body"])
	return nil
}

func (s *profileService) Block(ctx context.Context, id int64) error {
	return s.setBlocked(ctx, id, true)
}

func (s *profileService) Unblock(ctx context.Context, id int64) error {
	return s.setBlocked(ctx, id, false)
}

func (s *profileService) setBlocked(ctx context.Context, id int64, blocked bool) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Role == models.RoleAdmin {
		return fmt.Errorf("block admin: %w", ErrForbidden)
	}
	if err := s.stg.SetBlocked(ctx, id, blocked); err != nil {
		return mapStorageErr("set blocked", err)
	}
	s.log.Info("profile block changed", logger.Int64("profile_id", id), logger.Bool("blocked", blocked))

	// blocked profiles cannot sign in, so the notice mostly lands on Telegram
	title, body := messages["unblocked_title"], messages["unblocked_body"]
	if blocked {
		title, body = messages["blocked_title"], messages["blocked_body"]
	}
	notifyLogged(ctx, s.notify, s.log, id, models.NotifyAccount, title, body)
	return nil
}

func (s *profileService) Standing(ctx context.Context, driverID int64) (ranking.Standing, error) {
	p, err := s.Get(ctx, driverID)
	if err != nil {
		return ranking.Standing{}, err
	}
	if !p.IsDriver() {
		return ranking.Standing{}, ErrForbidden
	}
	return ranking.Compute(p.CompletedDeliveries, p.AvgRating), nil
}

func (s *profileService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	return s.stg.Leaderboard(ctx, clampLimit(limit, 10, 100))
}

func (s *profileService) SyncRank(ctx context.Context, driverID int64) (ranking.Tier, bool, error) {
	p, err := s.Get(ctx, driverID)
	if err != nil {
		return ranking.Bronze, false, err
	}
	tier := ranking.TierFor(p.CompletedDeliveries, p.AvgRating)
	if tier.String() == p.RankTier {
		return tier, false, nil
	}
	if err := s.stg.UpdateRankTier(ctx, driverID, tier.String()); err != nil {
		return tier, false, mapStorageErr("update rank", err)
	}
	s.log.Info("rank changed", logger.Int64("driver_id", driverID), logger.String("from", p.RankTier), logger.String("to", tier.String()))
	notifyLogged(ctx, s.notify, s.log, driverID, models.NotifyRank, messages["rank_title"], fmt.Sprintf(messages["rank_body"], tier))
	return tier, true, nil
}
