package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/service/auth"
	"github.com/hanxue/hanxue-api/internal/store"
)

// ProfileUpdate carries the profile fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	DisplayName *string
	TargetHSK   *int
}

// UserService provides account operations.
type UserService interface {
	// RegisterUser creates an account. targetHSK of zero keeps the default.
	RegisterUser(ctx context.Context, email, password, displayName string, targetHSK int) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile applies update to the user's profile and returns the result.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error

	// DeleteUser deletes a user and, through cascading keys, their progress.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	verifier  auth.PasswordVerifier
	runInTx   store.TxRunner
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	verifier auth.PasswordVerifier,
	runInTx store.TxRunner,
	logger *slog.Logger,
) *UserServiceImpl {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if runInTx == nil {
		panic("runInTx cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		verifier:  verifier,
		runInTx:   runInTx,
		logger:    logger.With("component", "user_service"),
	}
}

// RegisterUser implements UserService.RegisterUser
func (s *UserServiceImpl) RegisterUser(
	ctx context.Context,
	email, password, displayName string,
	targetHSK int,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password, displayName)
	if err != nil {
		return nil, err
	}
	if targetHSK != 0 {
		user.TargetHSK = targetHSK
		if err := user.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, ErrEmailExists
		}
		log.Error("failed to save user", redact.ErrorAttr(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
			redact.ErrorAttr(err),
			"user_id", userID)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateProfile implements UserService.UpdateProfile
// The read and the write share a transaction so concurrent edits of different
// fields do not overwrite each other.
func (s *UserServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	var updated *domain.User
	err := s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if update.DisplayName != nil {
			user.DisplayName = *update.DisplayName
		}
		if update.TargetHSK != nil {
			user.TargetHSK = *update.TargetHSK
		}

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, domain.ErrDisplayNameTooLong) || errors.Is(err, domain.ErrInvalidTargetHSK) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update profile",
			redact.ErrorAttr(err),
			"user_id", userID)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return updated, nil
}

// ChangePassword implements UserService.ChangePassword
func (s *UserServiceImpl) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	currentPassword, newPassword string,
) error {
	return s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to retrieve user for password update: %w", err)
		}

		if err := s.verifier.Compare(user.HashedPassword, currentPassword); err != nil {
			return ErrWrongPassword
		}

		// The store hashes Password on update.
		user.Password = newPassword
		if err := txStore.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user password: %w", err)
		}

		logger.FromContextOrDefault(ctx, s.logger).Info("user password updated", "user_id", userID)
		return nil
	})
}

// DeleteUser implements UserService.DeleteUser
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			redact.ErrorAttr(err),
			"user_id", userID)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted", "user_id", userID)
	return nil
}
