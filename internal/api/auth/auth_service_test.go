package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

// MockCredentialStore is a mock implementation of CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindActiveByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockCredentialStore) FindAnyByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockCredentialStore) Insert(ctx context.Context, name, email, passwordHash string) (int64, error) {
	args := m.Called(ctx, name, email, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

// MockHasher records which hashes Verify was asked about.
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(plaintext, hash string) bool {
	args := m.Called(plaintext, hash)
	return args.Bool(0)
}

func newTestService() (*AuthServiceImpl, *MockCredentialStore, *MockHasher) {
	repo := new(MockCredentialStore)
	hasher := new(MockHasher)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, hasher, logger), repo, hasher
}

func validRegistration() RegisterInput {
	return RegisterInput{Name: "Alice", Email: "a@x.io", Password: "pw1", PasswordConfirm: "pw1"}
}

func TestAuthServiceImpl_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		repo.On("FindAnyByEmail", mock.Anything, "a@x.io").Return(nil, types.ErrNotFound)
		hasher.On("Hash", "pw1").Return("$2a$hash", nil)
		repo.On("Insert", mock.Anything, "Alice", "a@x.io", "$2a$hash").Return(int64(7), nil)

		id, err := svc.Register(ctx, validRegistration())
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		repo.AssertExpectations(t)
		hasher.AssertExpectations(t)
	})

	t.Run("ValidationSkipsStore", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		in := validRegistration()
		in.PasswordConfirm = "pw2"

		_, err := svc.Register(ctx, in)
		assert.EqualError(t, err, types.MsgPasswordMismatch)
		repo.AssertNotCalled(t, "FindAnyByEmail", mock.Anything, mock.Anything)
		hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("EmailOnRecord", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		deleted := &types.User{ID: 3, Email: "a@x.io", Status: types.UserStatusInactive}
		repo.On("FindAnyByEmail", mock.Anything, "a@x.io").Return(deleted, nil)

		_, err := svc.Register(ctx, validRegistration())
		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, types.MsgEmailRegistered, vErr.Message)
		hasher.AssertNotCalled(t, "Hash", mock.Anything)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostInsertRace", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		repo.On("FindAnyByEmail", mock.Anything, "a@x.io").Return(nil, types.ErrNotFound)
		hasher.On("Hash", "pw1").Return("$2a$hash", nil)
		repo.On("Insert", mock.Anything, "Alice", "a@x.io", "$2a$hash").Return(int64(0), types.ErrEmailTaken)

		_, err := svc.Register(ctx, validRegistration())
		assert.EqualError(t, err, types.MsgEmailRegistered)
	})

	t.Run("PasswordTooLong", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		repo.On("FindAnyByEmail", mock.Anything, "a@x.io").Return(nil, types.ErrNotFound)
		hasher.On("Hash", "pw1").Return("", ErrPasswordTooLong)

		_, err := svc.Register(ctx, validRegistration())
		assert.EqualError(t, err, MsgPasswordTooLong)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		svc, repo, _ := newTestService()
		storeErr := types.NewStoreError("FindAnyByEmail", errors.New("connection refused"))
		repo.On("FindAnyByEmail", mock.Anything, "a@x.io").Return(nil, storeErr)

		_, err := svc.Register(ctx, validRegistration())
		var sErr *types.StoreError
		assert.ErrorAs(t, err, &sErr)
		_, recoverable := types.UserMessage(err)
		assert.False(t, recoverable)
	})
}

func TestAuthServiceImpl_Login(t *testing.T) {
	ctx := context.Background()
	alice := &types.User{ID: 1, Name: "Alice", Email: "a@x.io", PasswordHash: "$2a$alice", Status: types.UserStatusActive}

	t.Run("Success", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		repo.On("FindActiveByEmail", mock.Anything, "a@x.io").Return(alice, nil)
		hasher.On("Verify", "pw1", "$2a$alice").Return(true)

		identity, err := svc.Login(ctx, LoginInput{Email: " a@x.io ", Password: "pw1"})
		require.NoError(t, err)
		assert.Equal(t, types.Identity{UserID: 1, UserName: "Alice"}, identity)
	})

	t.Run("RequiredFields", func(t *testing.T) {
		svc, repo, _ := newTestService()
		_, err := svc.Login(ctx, LoginInput{Email: "a@x.io"})
		assert.EqualError(t, err, types.MsgRequiredFields)
		repo.AssertNotCalled(t, "FindActiveByEmail", mock.Anything, mock.Anything)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		repo.On("FindActiveByEmail", mock.Anything, "a@x.io").Return(alice, nil)
		hasher.On("Verify", "nope", "$2a$alice").Return(false)

		_, err := svc.Login(ctx, LoginInput{Email: "a@x.io", Password: "nope"})
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		assert.EqualError(t, err, types.MsgInvalidCredentials)
	})

	t.Run("UnknownUserStillVerifies", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		repo.On("FindActiveByEmail", mock.Anything, "ghost@x.io").Return(nil, types.ErrNotFound)
		hasher.On("Verify", "pw1", "").Return(false)

		_, err := svc.Login(ctx, LoginInput{Email: "ghost@x.io", Password: "pw1"})
		assert.EqualError(t, err, types.MsgInvalidCredentials)
		hasher.AssertCalled(t, "Verify", "pw1", "")
	})

	t.Run("InactiveUser", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		inactive := *alice
		inactive.Status = types.UserStatusInactive
		repo.On("FindActiveByEmail", mock.Anything, "a@x.io").Return(&inactive, nil)
		hasher.On("Verify", "pw1", "$2a$alice").Return(true)

		_, err := svc.Login(ctx, LoginInput{Email: "a@x.io", Password: "pw1"})
		assert.EqualError(t, err, types.MsgInvalidCredentials)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		svc, repo, hasher := newTestService()
		storeErr := types.NewStoreError("FindActiveByEmail", errors.New("timeout"))
		repo.On("FindActiveByEmail", mock.Anything, "a@x.io").Return(nil, storeErr)

		_, err := svc.Login(ctx, LoginInput{Email: "a@x.io", Password: "pw1"})
		assert.ErrorIs(t, err, storeErr)
		hasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "success", outcomeOf(nil))
	assert.Equal(t, "invalid", outcomeOf(types.NewValidationError("x")))
	assert.Equal(t, "denied", outcomeOf(types.NewAuthError()))
	assert.Equal(t, "error", outcomeOf(errors.New("boom")))
}
