package service

import (
	"context"
	"fmt"
	"sync"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/pkg/realtime"
	"entregas/storage"
)

// EventNotification is the realtime event type carrying a new notification.
const EventNotification = "notification"

// Pusher sends a text to a linked chat.
type Pusher interface {
	Push(ctx context.Context, chatID int64, text string) error
}

type NotificationService interface {
	// Notify persists the notification, then publishes it to the portals and
	// pushes it to the profile's linked chat. Only the persist error is returned.
	Notify(ctx context.Context, profileID int64, kind, title, body string) error
	NotifyAdmins(ctx context.Context, kind, title, body string) error
	List(ctx context.Context, profileID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, profileID, id int64) error
	MarkAllRead(ctx context.Context, profileID int64) (int64, error)
	UnreadCount(ctx context.Context, profileID int64) (int, error)
	AttachPusher(p Pusher)
}

type notificationService struct {
	stg      storage.INotificationStorage
	profiles storage.IProfileStorage
	bus      realtime.Bus
	log      logger.ILogger

	mu     sync.RWMutex
	pusher Pusher
}

func NewNotificationService(stg storage.IStorage, log logger.ILogger, bus realtime.Bus) NotificationService {
	return &notificationService{
		stg:      stg.Notification(),
		profiles: stg.Profile(),
		bus:      bus,
		log:      log,
	}
}

func (s *notificationService) AttachPusher(p Pusher) {
	s.mu.Lock()
	s.pusher = p
	s.mu.Unlock()
}

func (s *notificationService) Notify(ctx context.Context, profileID int64, kind, title, body string) error {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("notify profile %d: %w", profileID, ErrNotFound)
	}

	n, err := s.stg.Create(ctx, &models.Notification{
		ProfileID: profileID,
		Kind:      kind,
		Title:     title,
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if ev, err := realtime.NewEvent(profileID, EventNotification, n); err != nil {
		s.log.Error("failed to build realtime event", logger.Error(err))
	} else if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.Warning("failed to publish notification", logger.Int64("profile_id", profileID), logger.Error(err))
	}

	s.mu.RLock()
	pusher := s.pusher
	s.mu.RUnlock()

	if pusher != nil && profile.TelegramChatID != nil {
		if err := pusher.Push(ctx, *profile.TelegramChatID, title+"\n\n"+body); err != nil {
			s.log.Warning("failed to push notification", logger.Int64("profile_id", profileID), logger.Error(err))
		}
	}
	return nil
}

func (s *notificationService) NotifyAdmins(ctx context.Context, kind, title, body string) error {
	admins, err := s.profiles.List(ctx, models.ProfileFilter{Role: models.RoleAdmin})
	if err != nil {
		return fmt.Errorf("notify admins: %w", err)
	}
	for _, a := range admins {
		if err := s.Notify(ctx, a.ID, kind, title, body); err != nil {
			s.log.Error("failed to notify admin", logger.Int64("admin_id", a.ID), logger.Error(err))
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, profileID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	return s.stg.GetByProfile(ctx, profileID, unreadOnly, clampLimit(limit, 50, 200))
}

func (s *notificationService) MarkRead(ctx context.Context, profileID, id int64) error {
	return mapStorageErr("mark read", s.stg.MarkRead(ctx, profileID, id))
}

func (s *notificationService) MarkAllRead(ctx context.Context, profileID int64) (int64, error) {
	return s.stg.MarkAllRead(ctx, profileID)
}

func (s *notificationService) UnreadCount(ctx context.Context, profileID int64) (int, error) {
	return s.stg.UnreadCount(ctx, profileID)
}

// notifyLogged is for side notifications whose failure must not fail the caller.
func notifyLogged(ctx context.Context, n NotificationService, log logger.ILogger, profileID int64, kind, title, body string) {
	if err := n.Notify(ctx, profileID, kind, title, body); err != nil {
		log.Error("failed to notify", logger.Int64("profile_id", profileID), logger.String("kind", kind), logger.Error(err))
	}
}
