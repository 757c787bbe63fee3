package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"crack-go/internal/dto"
	"crack-go/internal/repository"
	"crack-go/internal/testutil"
	"crack-go/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *utils.JWTManager) {
	t.Helper()
	db := testutil.NewTestDB(t)
	jwtManager := utils.NewJWTManager("test-secret", 7*24*time.Hour)
	return NewAuthService(repository.NewUserRepository(db), jwtManager), jwtManager
}

func TestAuthService_SignupThenLogin(t *testing.T) {
	svc, jwtManager := newAuthService(t)
	ctx := context.Background()

	signup, err := svc.Register(ctx, &dto.SignupRequest{Name: "Ann", Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotZero(t, signup.User.ID)
	assert.Equal(t, "Ann", signup.User.Name)
	assert.NotEmpty(t, signup.Token)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)

	claims, err := jwtManager.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, claims.UserID)
	assert.Equal(t, signup.User.ID, login.User.ID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.SignupRequest{Name: "Ann", Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "ann@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)

	resp, err = svc.Login(ctx, &dto.LoginRequest{Email: "bob@x.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.SignupRequest{Name: "Ann", Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.SignupRequest{Name: "Other Ann", Email: "ann@x.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthService_ConcurrentSignupSameEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, &dto.SignupRequest{Name: "Ann", Email: "race@x.com", Password: "secret123"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrUserExists)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAuthService_GetMe(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	signup, err := svc.Register(ctx, &dto.SignupRequest{Name: "Ann", Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)

	me, err := svc.GetMe(ctx, signup.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", me.Email)

	_, err = svc.GetMe(ctx, signup.User.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
