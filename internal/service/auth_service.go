package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/auth"
	"github.com/classroom-kit/student-records/internal/config"
	"github.com/classroom-kit/student-records/internal/domain"
	"github.com/classroom-kit/student-records/internal/events"
	"github.com/classroom-kit/student-records/internal/persistence"
	"github.com/classroom-kit/student-records/internal/repository"
	apperrors "github.com/classroom-kit/student-records/pkg/util/errorutil"
)

const (
	MessageAdminActive      = "Administrator account active."
	MessageAwaitingApproval = "Registration received. Await authorization."

	adminDisplayName = "Administrator"
)

// Registration is the outcome of a successful sign-up. NotifyErr is set when
// the administrator could not be emailed; the account exists regardless.
type Registration struct {
	User      *domain.User
	Message   string
	NotifyErr error
}

// Approval is the outcome of authorizing a pending user.
type Approval struct {
	User      *domain.User
	NotifyErr error
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
	Admin     bool
}

// AuthService coordinates the registration and approval workflow.
type AuthService struct {
	users      repository.UserRepository
	sessions   persistence.SessionStore
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	admin      config.AdminConfig
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   persistence.SessionStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = persistence.NewNoopSessionStore()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   sessions,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		admin:      cfg.Admin,
		logger:     logger,
	}
}

type registrationInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register creates an account. Only the administrator email starts out
// authorized; everyone else waits for approval and the administrator is
// emailed about the request.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Registration, error) {
	in := registrationInput{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Authorized:   s.IsAdmin(in.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", err)
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	if user.Authorized {
		s.logger.Info("administrator registered", zap.Int64("user_id", user.ID))
		return &Registration{User: user, Message: MessageAdminActive}, nil
	}

	reg := &Registration{User: user, Message: MessageAwaitingApproval}
	reg.NotifyErr = s.publish(ctx, events.EventUserRegistered, user.ID, events.UserPayload{Name: user.Name, Email: user.Email})
	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.Bool("notified", reg.NotifyErr == nil))
	return reg, nil
}

// Authenticate reports whether the credentials belong to an authorized
// account. The reason for a rejection is logged, never returned.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (bool, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("login rejected", zap.String("email", email), zap.String("reason", "unknown_user"))
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.Int64("user_id", user.ID), zap.String("reason", "bad_password"))
		return nil, nil
	}
	if user.Pending() {
		s.logger.Info("login rejected", zap.Int64("user_id", user.ID), zap.String("reason", "pending"))
		return nil, nil
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("invalid credentials or account not yet authorized")
	}

	admin := s.IsAdmin(user.Email)
	role := domain.RoleUser
	if admin {
		role = domain.RoleAdmin
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("login", zap.Int64("user_id", user.ID), zap.Bool("admin", admin))
	return &Session{User: user, Token: token, ExpiresAt: exp, Admin: admin}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.Remaining(time.Now())
	if ttl == 0 {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.NewUnavailable("session store unavailable", err)
	}
	return nil
}

// Approve authorizes a user and emails them. A failed email is reported in
// NotifyErr and does not undo the approval.
func (s *AuthService) Approve(ctx context.Context, userID int64) (*Approval, error) {
	user, err := s.users.SetAuthorized(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, fmt.Errorf("approve user: %w", err)
	}

	approval := &Approval{User: user}
	approval.NotifyErr = s.publish(ctx, events.EventUserApproved, user.ID, events.UserPayload{Name: user.Name, Email: user.Email})
	s.logger.Info("user approved", zap.Int64("user_id", user.ID), zap.Bool("notified", approval.NotifyErr == nil))
	return approval, nil
}

// ListPending returns users awaiting approval.
func (s *AuthService) ListPending(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return users, nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// RemoveUserByEmail deletes an account on behalf of actor. Removing an
// unknown email is not an error.
func (s *AuthService) RemoveUserByEmail(ctx context.Context, email, actor string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, apperrors.NewValidationError("invalid input", map[string]any{"email": "is required"})
	}
	if s.admin.Email != "" && strings.EqualFold(email, s.admin.Email) {
		return false, apperrors.NewValidationError("invalid input", map[string]any{"email": "administrator account cannot be removed"})
	}

	var userID int64
	if user, err := s.users.GetByEmail(ctx, email); err == nil {
		userID = user.ID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("load user: %w", err)
	}

	removed, err := s.users.DeleteByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	s.logger.Warn("user removal",
		zap.String("email", email),
		zap.String("actor", actor),
		zap.Bool("removed", removed))

	if removed {
		if err := s.publish(ctx, events.EventUserRemoved, userID, events.UserRemovedPayload{Email: email, Actor: actor}); err != nil {
			s.logger.Error("user removal event failed", zap.Error(err))
		}
	}
	return removed, nil
}

// EnsureAdmin seeds the administrator account from the configured password
// when it does not exist yet. An existing account is authorized and, when a
// password is configured, its digest is replaced unless it already matches.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	if s.admin.Email == "" {
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, s.admin.Email)
	switch {
	case err == nil:
		if existing.Pending() {
			if _, err := s.users.SetAuthorized(ctx, existing.ID); err != nil {
				return fmt.Errorf("authorize administrator: %w", err)
			}
			s.logger.Info("administrator account authorized", zap.Int64("user_id", existing.ID))
		}
		if s.admin.Password == "" || auth.ComparePassword(existing.PasswordHash, s.admin.Password) == nil {
			return nil
		}
		hash, err := auth.HashPassword(s.admin.Password, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash administrator password: %w", err)
		}
		if err := s.users.SetPassword(ctx, existing.ID, hash); err != nil {
			return fmt.Errorf("reset administrator password: %w", err)
		}
		s.logger.Info("administrator password reset from ADMIN_PASSWORD", zap.Int64("user_id", existing.ID))
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("load administrator: %w", err)
	}

	if s.admin.Password == "" {
		s.logger.Warn("no administrator account and ADMIN_PASSWORD unset; register the admin email to create it")
		return nil
	}

	hash, err := auth.HashPassword(s.admin.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash administrator password: %w", err)
	}
	admin := &domain.User{
		Name:         adminDisplayName,
		Email:        s.admin.Email,
		PasswordHash: hash,
		Authorized:   true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("create administrator: %w", err)
	}
	s.logger.Info("administrator account seeded", zap.Int64("user_id", admin.ID))
	return nil
}

// IsAdmin reports whether email is the configured administrator address.
func (s *AuthService) IsAdmin(email string) bool {
	return s.admin.Email != "" && email == s.admin.Email
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID int64, payload any) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
