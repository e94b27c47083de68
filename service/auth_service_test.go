package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/models"
)

func TestSignUpFormatsAndDefaults(t *testing.T) {
	f := newFixture(t)

	c := f.signUp(t, SignUpInput{Email: " Cliente@Example.com ", Role: models.RoleClient, Document: "52998224725", Phone: "+55 (11) 98765-4321", CEP: "01310100"})
	assert.Equal(t, "cliente@example.com", c.Email)
	assert.Equal(t, cpfClient, c.Document)
	assert.Equal(t, "(11) 98765-4321", c.Phone)
	assert.Equal(t, "01310-100", c.CEP)
	assert.True(t, c.Approved)
	assert.NotEmpty(t, c.PasswordHash)

	d := f.signUp(t, SignUpInput{Email: "moto@example.com", Role: models.RoleDriver, Document: cpfDriver})
	assert.False(t, d.Approved, "drivers wait for approval")

	w := f.signUp(t, SignUpInput{Email: "loja@example.com", Role: models.RoleWholesale, Document: "11222333000181"})
	assert.Equal(t, cnpjShop, w.Document)
}

func TestSignUpAdminBootstrap(t *testing.T) {
	f := newFixture(t)

	a := f.signUp(t, SignUpInput{Email: "ADMIN@entregas.com.br", Role: models.RoleClient})
	assert.Equal(t, models.RoleAdmin, a.Role)
	assert.Empty(t, a.Document)

	_, err := f.svc.Auth().SignUp(context.Background(), SignUpInput{
		Email: "intruso@example.com", Password: password, FullName: "X", Role: models.RoleAdmin,
		Phone: "11987654321", CEP: "01310100",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignUpValidation(t *testing.T) {
	f := newFixture(t)
	base := SignUpInput{
		Email: "ok@example.com", Password: password, FullName: "Ok", Role: models.RoleClient,
		Document: cpfClient, Phone: "11987654321", CEP: "01310100",
	}

	cases := []struct {
		name  string
		edit  func(*SignUpInput)
		field string
	}{
		{"bad email", func(in *SignUpInput) { in.Email = "nope" }, "email"},
		{"no name", func(in *SignUpInput) { in.FullName = "  " }, "full_name"},
		{"bad cpf", func(in *SignUpInput) { in.Document = "111.111.111-11" }, "document"},
		{"cpf for wholesale", func(in *SignUpInput) { in.Role = models.RoleWholesale }, "document"},
		{"cnpj for driver", func(in *SignUpInput) { in.Role = models.RoleDriver; in.Document = cnpjShop }, "document"},
		{"unknown role", func(in *SignUpInput) { in.Role = "boss" }, "role"},
		{"bad phone", func(in *SignUpInput) { in.Phone = "1234" }, "phone"},
		{"bad cep", func(in *SignUpInput) { in.CEP = "00000-000" }, "cep"},
		{"short password", func(in *SignUpInput) { in.Password = "123" }, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.edit(&in)
			_, err := f.svc.Auth().SignUp(context.Background(), in)
			require.ErrorIs(t, err, ErrInvalidInput)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.client(t)

	_, err := f.svc.Auth().SignUp(context.Background(), SignUpInput{
		Email: "cliente@example.com", Password: password, FullName: "Outro", Role: models.RoleClient,
		Document: cpfDriver, Phone: "11987654321", CEP: "01310100",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSignInAndResolve(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	ctx := context.Background()

	sess, err := f.svc.Auth().SignIn(ctx, "CLIENTE@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, c.ID, sess.Profile.ID)
	assert.NotEmpty(t, sess.Token)

	p, err := f.svc.Auth().Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, c.ID, p.ID)

	_, err = f.svc.Auth().SignIn(ctx, "cliente@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Auth().SignIn(ctx, "ninguem@example.com", password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Auth().Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.svc.Profile().Block(ctx, c.ID))
	_, err = f.svc.Auth().SignIn(ctx, "cliente@example.com", password)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = f.svc.Auth().Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestDriverSignUpNotifiesAdmins(t *testing.T) {
	f := newFixture(t)
	a := f.admin(t)
	f.signUp(t, SignUpInput{Email: "moto@example.com", Role: models.RoleDriver, Document: cpfDriver, FullName: "Joana"})

	list := f.notifications(t, a.ID)
	require.NotEmpty(t, list)
	assert.Equal(t, messages["driver_signup_title"], list[0].Title)
	assert.Contains(t, list[0].Body, "Joana")
}
