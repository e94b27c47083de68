package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/models"
)

func TestNotifyPersistsPublishesAndPushes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t)

	before := f.bus.count(c.ID)
	require.NoError(t, f.svc.Notification().Notify(ctx, c.ID, models.NotifyOrder, "Oi", "sem chat"))
	assert.Equal(t, before+1, f.bus.count(c.ID))
	assert.Empty(t, f.pusher.sent, "profile without a linked chat")

	code, err := f.svc.Profile().TelegramLinkCode(ctx, c.ID)
	require.NoError(t, err)
	_, err = f.svc.Profile().LinkTelegram(ctx, code, 4242)
	require.NoError(t, err)

	require.NoError(t, f.svc.Notification().Notify(ctx, c.ID, models.NotifyOrder, "Título", "Corpo"))
	require.Len(t, f.pusher.sent, 1)
	assert.Equal(t, int64(4242), f.pusher.sent[0].chatID)
	assert.Equal(t, "Título\n\nCorpo", f.pusher.sent[0].text)

	assert.ErrorIs(t, f.svc.Notification().Notify(ctx, 999, models.NotifyOrder, "x", "y"), ErrNotFound)
}

func TestNotificationReadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t)
	other := f.signUp(t, SignUpInput{Email: "outro@example.com", Role: models.RoleClient, Document: cpfDriver})

	require.NoError(t, f.svc.Notification().Notify(ctx, c.ID, models.NotifyOrder, "a", "1"))
	require.NoError(t, f.svc.Notification().Notify(ctx, c.ID, models.NotifyOrder, "b", "2"))

	unread, err := f.svc.Notification().UnreadCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unread, "welcome plus two")

	list := f.notifications(t, c.ID)
	assert.Equal(t, "b", list[0].Title, "newest first")

	assert.ErrorIs(t, f.svc.Notification().MarkRead(ctx, other.ID, list[0].ID), ErrNotFound)
	require.NoError(t, f.svc.Notification().MarkRead(ctx, c.ID, list[0].ID))

	onlyUnread, err := f.svc.Notification().List(ctx, c.ID, true, 0)
	require.NoError(t, err)
	assert.Len(t, onlyUnread, 2)

	n, err := f.svc.Notification().MarkAllRead(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = f.svc.Notification().UnreadCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
