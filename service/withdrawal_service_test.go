package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/models"
)

func TestWithdrawalLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	client := f.client(t)
	driver := f.approvedDriver(t, "moto@example.com", cpfDriver)
	tr := f.tariff(t)

	// 800 + 250*8 = 2800, driver keeps 80% = 2240 per delivery
	for i := 0; i < 3; i++ {
		f.deliver(t, driver, f.order(t, client, tr.ID, 8).ID)
	}

	bal, err := f.svc.Withdrawal().Balance(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverBalance{Earned: 6720, Available: 6720}, *bal)

	_, err = f.svc.Withdrawal().Request(ctx, driver, 1999, "cpf", cpfDriver)
	assert.ErrorIs(t, err, ErrInvalidInput, "below minimum")
	_, err = f.svc.Withdrawal().Request(ctx, driver, 3000, "cpf", "123")
	assert.ErrorIs(t, err, ErrInvalidInput, "bad pix key")
	_, err = f.svc.Withdrawal().Request(ctx, driver, 9000, "cpf", cpfDriver)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	_, err = f.svc.Withdrawal().Request(ctx, client, 3000, "cpf", cpfClient)
	assert.ErrorIs(t, err, ErrForbidden)

	w, err := f.svc.Withdrawal().Request(ctx, driver, 4000, "EMAIL", "pix@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, w.Status)
	assert.Equal(t, "email", w.PixKeyType)
	assert.Equal(t, messages["withdrawal_new_title"], f.notifications(t, admin.ID)[0].Title)

	bal, err = f.svc.Withdrawal().Balance(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), bal.Pending)
	assert.Equal(t, int64(2720), bal.Available)

	_, err = f.svc.Withdrawal().Request(ctx, driver, 3000, "phone", "11987654321")
	assert.ErrorIs(t, err, ErrInsufficientBalance, "pending requests reserve balance")

	_, err = f.svc.Withdrawal().MarkPaid(ctx, admin, w.ID)
	assert.ErrorIs(t, err, ErrConflict, "must be approved first")
	_, err = f.svc.Withdrawal().Approve(ctx, driver, w.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	w, err = f.svc.Withdrawal().Approve(ctx, admin, w.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalApproved, w.Status)
	require.NotNil(t, w.ReviewedBy)
	assert.Equal(t, admin.ID, *w.ReviewedBy)

	w, err = f.svc.Withdrawal().MarkPaid(ctx, admin, w.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPaid, w.Status)
	assert.Equal(t, messages["withdrawal_paid_title"], f.notifications(t, driver.ID)[0].Title)

	bal, err = f.svc.Withdrawal().Balance(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverBalance{Earned: 6720, Withdrawn: 4000, Available: 2720}, *bal)
}

func TestWithdrawalReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	client := f.client(t)
	driver := f.approvedDriver(t, "moto@example.com", cpfDriver)
	tr := f.tariff(t)
	f.deliver(t, driver, f.order(t, client, tr.ID, 8).ID)

	w, err := f.svc.Withdrawal().Request(ctx, driver, 2000, "random", "123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, err)

	pending, err := f.svc.Withdrawal().ListByStatus(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = f.svc.Withdrawal().Reject(ctx, admin, w.ID, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	w, err = f.svc.Withdrawal().Reject(ctx, admin, w.ID, "chave PIX divergente")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, w.Status)
	assert.Equal(t, "chave PIX divergente", w.Note)

	n := f.notifications(t, driver.ID)[0]
	assert.Equal(t, messages["withdrawal_no_title"], n.Title)
	assert.Contains(t, n.Body, "chave PIX divergente")
	assert.Contains(t, n.Body, "R$ 20,00")

	bal, err := f.svc.Withdrawal().Balance(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2240), bal.Available, "rejected requests release the balance")

	_, err = f.svc.Withdrawal().ListByStatus(ctx, "lost")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
