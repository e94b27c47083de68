package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"entregas/pkg/auth"
	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/pkg/validator"
	"entregas/storage"
)

type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	CEP      string `json:"cep"`
}

type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *models.Profile `json:"profile"`
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Resolve parses a bearer token and loads its profile, rejecting blocked ones.
	Resolve(ctx context.Context, token string) (*models.Profile, error)
}

type authService struct {
	stg         storage.IProfileStorage
	log         logger.ILogger
	tokens      *auth.TokenManager
	adminEmails map[string]struct{}
	notify      NotificationService
}

func NewAuthService(stg storage.IStorage, log logger.ILogger, tokens *auth.TokenManager, adminEmails []string, notify NotificationService) AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &authService{
		stg:         stg.Profile(),
		log:         log,
		tokens:      tokens,
		adminEmails: admins,
		notify:      notify,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *authService) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[email]
	return ok
}

func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	p, err := s.buildProfile(in)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, invalid("password", err.Error())
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p.PasswordHash = hash

	created, err := s.stg.Create(ctx, p)
	if err != nil {
		return nil, mapStorageErr("sign up", err)
	}
	s.log.Info("profile created", logger.Int64("profile_id", created.ID), logger.String("role", created.Role))

	if created.Role == models.RoleDriver {
		notifyLogged(ctx, s.notify, s.log, created.ID, models.NotifyAccount, messages["welcome_title"], messages["welcome_driver_body"])
		if err := s.notify.NotifyAdmins(ctx, models.NotifyAccount, messages["driver_signup_title"],
			fmt.Sprintf(messages["driver_signup_body"], created.FullName)); err != nil {
			s.log.Error("failed to notify admins", logger.Error(err))
		}
	} else {
		notifyLogged(ctx, s.notify, s.log, created.ID, models.NotifyAccount, messages["welcome_title"], messages["welcome_body"])
	}

	return s.session(created)
}

func (s *authService) buildProfile(in SignUpInput) (*models.Profile, error) {
	email := normalizeEmail(in.Email)
	if !validator.ValidEmail(email) {
		return nil, invalid("email", "invalid email address")
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, invalid("full_name", "required")
	}

	p := &models.Profile{
		Email:    email,
		FullName: name,
		Role:     in.Role,
		Approved: true,
	}

	if s.isAdminEmail(email) {
		p.Role = models.RoleAdmin
	} else if p.Role == models.RoleAdmin {
		return nil, invalid("role", "must be client, driver or wholesale")
	}

	switch p.Role {
	case models.RoleAdmin:
	case models.RoleClient, models.RoleDriver:
		if !validator.ValidCPF(in.Document) {
			return nil, invalid("document", "invalid CPF")
		}
		p.Document = validator.FormatCPF(in.Document)
	case models.RoleWholesale:
		if !validator.ValidCNPJ(in.Document) {
			return nil, invalid("document", "invalid CNPJ")
		}
		p.Document = validator.FormatCNPJ(in.Document)
	default:
		return nil, invalid("role", "must be client, driver or wholesale")
	}

	if p.Role != models.RoleAdmin || in.Phone != "" {
		if !validator.ValidPhone(in.Phone) {
			return nil, invalid("phone", "invalid phone number")
		}
		p.Phone = validator.FormatPhone(in.Phone)
	}
	if p.Role != models.RoleAdmin || in.CEP != "" {
		if !validator.ValidCEP(in.CEP) {
			return nil, invalid("cep", "invalid CEP")
		}
		p.CEP = validator.FormatCEP(in.CEP)
	}

	if p.Role == models.RoleDriver {
		p.Approved = false
	}
	return p, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	p, err := s.stg.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if p == nil {
		return nil, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if p.Blocked {
		return nil, ErrBlocked
	}
	return s.session(p)
}

func (s *authService) Resolve(ctx context.Context, token string) (*models.Profile, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", ErrInvalidCredentials)
	}
	p, err := s.stg.GetByID(ctx, claims.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("resolve: %w", ErrInvalidCredentials)
	}
	if p.Blocked {
		return nil, ErrBlocked
	}
	return p, nil
}

func (s *authService) session(p *models.Profile) (*Session, error) {
	token, exp, err := s.tokens.Issue(p.ID, p.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, Profile: p}, nil
}
