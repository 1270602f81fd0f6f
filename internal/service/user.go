package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/crowdcue/platform/internal/auth"
	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService handles guest session creation and profile reads. There is
// no password flow: a client joins with a display name and gets a user
// row plus a signed token for the user realm.
type UserService struct {
	pool    *pgxpool.Pool
	wallets repository.WalletRepository
	jwtMgr  *auth.JWTManager
	logger  *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(pool *pgxpool.Pool, wallets repository.WalletRepository, jwtMgr *auth.JWTManager, logger *slog.Logger) *UserService {
	return &UserService{pool: pool, wallets: wallets, jwtMgr: jwtMgr, logger: logger}
}

// GuestSession is the result of a successful join.
type GuestSession struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// RegisterGuest creates a user with a zero-balance wallet and mints a token.
func (s *UserService) RegisterGuest(ctx context.Context, displayName, currency string) (*GuestSession, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, domain.ErrValidation("display name is required")
	}
	if currency == "" {
		currency = "EUR"
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:          uuid.New(),
		DisplayName: displayName,
		Balance:     0,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.wallets.Create(ctx, s.pool, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, "", "")
	if err != nil {
		return nil, domain.ErrInternal("sign token", err)
	}

	s.logger.Info("guest registered", "user_id", user.ID)
	return &GuestSession{User: user, Token: token}, nil
}

// GetUser returns a user's profile.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.wallets.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}
