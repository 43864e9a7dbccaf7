package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/member-registry/internal/auth"
	"github.com/spec-kit/member-registry/internal/config"
	"github.com/spec-kit/member-registry/internal/domain"
	"github.com/spec-kit/member-registry/internal/events"
	"github.com/spec-kit/member-registry/internal/repository"
	"github.com/spec-kit/member-registry/pkg/util"
)

// ErrBadCredentials is the single rejection for any login failure. Unknown
// account, wrong password, and disabled account are indistinguishable to the
// caller.
var ErrBadCredentials = errors.New("bad credentials")

// AuthService coordinates login and account self-service flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	TokenMgr   *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenMgr,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Authenticate verifies the credential pair and issues both token kinds keyed
// by the account email.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, username)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if !user.Enabled {
		return nil, ErrBadCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrBadCredentials
	}

	accessToken, err := s.tokenMgr.IssueAccessToken(user.Email, nil)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokenMgr.IssueRefreshToken(user.Email, nil)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RegisterUser creates a new login account.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("User with email " + email + " already exists.")
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserRegisteredPayload{Email: user.Email},
	})
	return user, nil
}

// UpdatePassword verifies the existing password before storing a new hash.
// The new password must differ from the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, email, existingPassword, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return util.NewNotFound("User with email " + email)
		}
		return err
	}

	if err := auth.ComparePassword(user.PasswordHash, existingPassword); err != nil {
		return util.NewIllegalOperation("Existing password does not match the current password.")
	}
	if err := auth.ComparePassword(user.PasswordHash, newPassword); err == nil {
		return util.NewIllegalOperation("New password can not be the same.")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
