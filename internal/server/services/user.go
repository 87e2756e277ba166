// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login with JWT issuance, and the
// admin account operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/premio/internal/common"
	"github.com/dmitrijs2005/premio/internal/dbx"
	"github.com/dmitrijs2005/premio/internal/server/auth"
	"github.com/dmitrijs2005/premio/internal/server/config"
	"github.com/dmitrijs2005/premio/internal/server/models"
	"github.com/dmitrijs2005/premio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/premio/internal/validation"
)

// UserService provides account-related operations:
// - Register: validate and create users
// - Login: verify credentials and mint an access token
// - List / Promote / Delete: admin account management
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register validates the submitted credentials, hashes the password, and
// creates the account. Duplicate usernames and emails surface as
// common.ErrorDuplicateUsername / common.ErrorDuplicateEmail.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validation.Username(username); err != nil {
		return nil, err
	}
	normalized, err := validation.Email(email)
	if err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Username: username, Email: normalized, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateUsername) || errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and returns a signed access token together
// with the account. The login key may be either a username or an email.
// Email keys are normalized the same way Register stores them, so any
// spelling of a registered email matches.
// Unknown accounts and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	key := strings.TrimSpace(login)
	if strings.Contains(key, "@") {
		key = strings.ToLower(key)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsernameOrEmail(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}
	return token, user, nil
}

// GetByID returns the account for the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByID(ctx, id)
}

// List returns all accounts ordered by creation time.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.List(ctx)
}

// Promote grants admin rights to the given account.
func (s *UserService) Promote(ctx context.Context, id int64) error {
	repo := s.repomanager.Users(s.db)
	return repo.PromoteToAdmin(ctx, id)
}

// Delete removes an account and, through the cascade, all of its
// predictions. The acting admin cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return common.ErrorForbidden
	}
	repo := s.repomanager.Users(s.db)
	return repo.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap admin account if no account with the
// given username exists yet. Creation and promotion run in one transaction.
// Returns the account and whether it was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	repo := s.repomanager.Users(s.db)

	existing, err := repo.GetByUsernameOrEmail(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error checking admin account: %w", err)
	}

	normalized, err := validation.Email(email)
	if err != nil {
		return nil, false, err
	}
	if err := validation.Password(password); err != nil {
		return nil, false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, common.ErrorInternal
	}

	var user *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)
		created, err := repoTx.Create(ctx, &models.User{Username: username, Email: normalized, PasswordHash: hash})
		if err != nil {
			return fmt.Errorf("error creating admin account: %w", err)
		}
		if err := repoTx.PromoteToAdmin(ctx, created.ID); err != nil {
			return fmt.Errorf("error promoting admin account: %w", err)
		}
		created.IsAdmin = true
		user = created
		return nil
	}); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
