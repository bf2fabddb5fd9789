package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/mocks"
	"github.com/hanxue/hanxue-api/internal/service"
	"github.com/hanxue/hanxue-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// directTx runs fn without a database and counts invocations.
type directTx struct {
	calls int
}

func (d *directTx) run(ctx context.Context, fn store.TxFn) error {
	d.calls++
	return fn(ctx, (*sql.Tx)(nil))
}

func existingUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Email:          "learner@example.com",
		DisplayName:    "learner",
		TargetHSK:      1,
		HashedPassword: mocks.HashPrefix + "password123",
		CreatedAt:      time.Now().Add(-24 * time.Hour),
		UpdatedAt:      time.Now().Add(-24 * time.Hour),
	}
}

func newUserService(userStore store.UserStore) (*service.UserServiceImpl, *directTx) {
	tx := &directTx{}
	return service.NewUserService(userStore, &mocks.MockPasswordVerifier{}, tx.run, testLogger()), tx
}

func TestNewUserService_PanicsOnNilDependencies(t *testing.T) {
	t.Parallel()
	tx := &directTx{}

	assert.Panics(t, func() {
		service.NewUserService(nil, &mocks.MockPasswordVerifier{}, tx.run, nil)
	})
	assert.Panics(t, func() {
		service.NewUserService(mocks.NewMockUserStore(), nil, tx.run, nil)
	})
	assert.Panics(t, func() {
		service.NewUserService(mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{}, nil, nil)
	})
}

func TestUserService_RegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("creates user with defaults", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		svc, _ := newUserService(userStore)

		user, err := svc.RegisterUser(context.Background(), " New@Example.com ", "password123", "", 0)

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "new", user.DisplayName)
		assert.Equal(t, domain.MinHSKLevel, user.TargetHSK)
		assert.Empty(t, user.Password, "plaintext must be cleared after create")
		assert.Equal(t, mocks.HashPrefix+"password123", user.HashedPassword)
	})

	t.Run("applies target level", func(t *testing.T) {
		t.Parallel()
		svc, _ := newUserService(mocks.NewMockUserStore())

		user, err := svc.RegisterUser(context.Background(), "hsk@example.com", "password123", "Mei", 4)

		require.NoError(t, err)
		assert.Equal(t, 4, user.TargetHSK)
		assert.Equal(t, "Mei", user.DisplayName)
	})

	t.Run("rejects invalid target level", func(t *testing.T) {
		t.Parallel()
		svc, _ := newUserService(mocks.NewMockUserStore())

		_, err := svc.RegisterUser(context.Background(), "hsk@example.com", "password123", "", 10)

		assert.ErrorIs(t, err, domain.ErrInvalidTargetHSK)
	})

	t.Run("rejects short password", func(t *testing.T) {
		t.Parallel()
		svc, _ := newUserService(mocks.NewMockUserStore())

		_, err := svc.RegisterUser(context.Background(), "short@example.com", "short", "", 0)

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newUserService(mocks.NewMockUserStore(existingUser()))

		_, err := svc.RegisterUser(context.Background(), "learner@example.com", "password123", "", 0)

		assert.ErrorIs(t, err, service.ErrEmailExists)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()
		dbErr := errors.New("connection reset")
		userStore := mocks.NewMockUserStore()
		userStore.CreateFn = func(context.Context, *domain.User) error { return dbErr }
		svc, _ := newUserService(userStore)

		_, err := svc.RegisterUser(context.Background(), "x@example.com", "password123", "", 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, service.ErrEmailExists)
	})
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()
	user := existingUser()
	svc, _ := newUserService(mocks.NewMockUserStore(user))

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("updates only given fields in a transaction", func(t *testing.T) {
		t.Parallel()
		user := existingUser()
		userStore := new(mocks.TestifyMockUserStore)
		userStore.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		userStore.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == user.ID &&
				u.DisplayName == "learner" &&
				u.TargetHSK == 3 &&
				u.Email == "learner@example.com"
		})).Return(nil)
		svc, tx := newUserService(userStore)

		target := 3
		got, err := svc.UpdateProfile(context.Background(), user.ID, service.ProfileUpdate{TargetHSK: &target})

		require.NoError(t, err)
		assert.Equal(t, 3, got.TargetHSK)
		assert.Equal(t, 1, tx.calls)
		userStore.AssertExpectations(t)
	})

	t.Run("user not found", func(t *testing.T) {
		t.Parallel()
		userStore := new(mocks.TestifyMockUserStore)
		id := uuid.New()
		userStore.On("GetByID", mock.Anything, id).Return(nil, store.ErrUserNotFound)
		svc, _ := newUserService(userStore)

		name := "x"
		_, err := svc.UpdateProfile(context.Background(), id, service.ProfileUpdate{DisplayName: &name})

		assert.ErrorIs(t, err, service.ErrUserNotFound)
		userStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("validation error passes through", func(t *testing.T) {
		t.Parallel()
		user := existingUser()
		svc, _ := newUserService(mocks.NewMockUserStore(user))

		target := 12
		_, err := svc.UpdateProfile(context.Background(), user.ID, service.ProfileUpdate{TargetHSK: &target})

		assert.ErrorIs(t, err, domain.ErrInvalidTargetHSK)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		user := existingUser()
		userStore := mocks.NewMockUserStore(user)
		svc, _ := newUserService(userStore)

		err := svc.ChangePassword(context.Background(), user.ID, "password123", "new-password-456")
		require.NoError(t, err)

		stored, err := userStore.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, mocks.HashPrefix+"new-password-456", stored.HashedPassword)
	})

	t.Run("wrong current password", func(t *testing.T) {
		t.Parallel()
		user := existingUser()
		svc, _ := newUserService(mocks.NewMockUserStore(user))

		err := svc.ChangePassword(context.Background(), user.ID, "not-it", "new-password-456")

		assert.ErrorIs(t, err, service.ErrWrongPassword)
	})

	t.Run("new password too short", func(t *testing.T) {
		t.Parallel()
		user := existingUser()
		svc, _ := newUserService(mocks.NewMockUserStore(user))

		err := svc.ChangePassword(context.Background(), user.ID, "password123", "short")

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()
	user := existingUser()
	userStore := mocks.NewMockUserStore(user)
	svc, _ := newUserService(userStore)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))
	assert.Empty(t, userStore.Users)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), user.ID), service.ErrUserNotFound)
}
